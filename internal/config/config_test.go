package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	configContent := `
[server]
port = "9090"

[source]
kind = "bridge"
bridge_url = "http://192.168.0.10:3001"
timeout = "3s"
unknown_label = "UNKNOWN"

[export]
delimiter = ";"
bucket = "posto-exports"

[insight]
model = "gemini-test"

[jobs]
workers = 2
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "posto.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, SourceBridge, config.Source.Kind)
	assert.Equal(t, "http://192.168.0.10:3001", config.Source.BridgeURL)
	assert.Equal(t, 3*time.Second, config.Source.Timeout)
	assert.Equal(t, "UNKNOWN", config.Source.UnknownLabel)
	assert.Equal(t, ";", config.Export.Delimiter)
	assert.Equal(t, "posto-exports", config.Export.Bucket)
	assert.Equal(t, "gemini-test", config.Insight.Model)
	assert.Equal(t, 2, config.Jobs.Workers)

	// Untouched keys keep their defaults
	assert.Equal(t, "vendas_frentistas", config.Export.FilenamePrefix)
	assert.Equal(t, 7, config.Source.LookbackDays)
	assert.Equal(t, 3, config.Jobs.MaxRetries)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, SourceMock, config.Source.Kind)
	assert.Equal(t, 150, config.Source.MockCount)
	assert.Equal(t, ",", config.Export.Delimiter)
	assert.True(t, config.Insight.Enabled)
	assert.Equal(t, 5, config.Jobs.Workers)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("POSTO_SOURCE_KIND", "bigquery")
	t.Setenv("POSTO_SOURCE_PROJECT", "posto-warehouse")
	t.Setenv("POSTO_EXPORT_DELIMITER", ";")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, SourceBigQuery, config.Source.Kind)
	assert.Equal(t, "posto-warehouse", config.Source.Project)
	assert.Equal(t, ";", config.Export.Delimiter)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("unknown source", func(t *testing.T) {
		t.Setenv("POSTO_SOURCE_KIND", "firebird")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "unknown source.kind")
	})

	t.Run("bigquery without project", func(t *testing.T) {
		t.Setenv("POSTO_SOURCE_KIND", "bigquery")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "source.project")
	})
}
