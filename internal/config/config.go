package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Source kinds.
const (
	SourceMock     = "mock"
	SourceBridge   = "bridge"
	SourceBigQuery = "bigquery"
)

// EnvPrefix prefixes environment overrides, e.g. POSTO_SOURCE_KIND.
const EnvPrefix = "POSTO"

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Source  SourceConfig  `mapstructure:"source"`
	Export  ExportConfig  `mapstructure:"export"`
	Insight InsightConfig `mapstructure:"insight"`
	Notion  NotionConfig  `mapstructure:"notion"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LogConfig selects logger level and format
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourceConfig says where fueling records come from
type SourceConfig struct {
	Kind         string        `mapstructure:"kind"`
	UnknownLabel string        `mapstructure:"unknown_label"`
	LookbackDays int           `mapstructure:"lookback_days"`
	BridgeURL    string        `mapstructure:"bridge_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Project      string        `mapstructure:"project"`
	Dataset      string        `mapstructure:"dataset"`
	MockSeed     int64         `mapstructure:"mock_seed"`
	MockCount    int           `mapstructure:"mock_count"`
}

// ExportConfig controls CSV exports
type ExportConfig struct {
	Delimiter      string `mapstructure:"delimiter"`
	FilenamePrefix string `mapstructure:"filename_prefix"`
	Bucket         string `mapstructure:"bucket"`
	ObjectPrefix   string `mapstructure:"object_prefix"`
}

// InsightConfig configures the AI suggestion
type InsightConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Model      string `mapstructure:"model"`
	APIVersion string `mapstructure:"api_version"`
}

// NotionConfig configures attendant summary publishing
type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

// JobsConfig sizes the export job queue
type JobsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
	Workers    int `mapstructure:"workers"`
	MaxRetries int `mapstructure:"max_retries"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("source.kind", SourceMock)
	v.SetDefault("source.unknown_label", "DESCONHECIDO")
	v.SetDefault("source.lookback_days", 7)
	v.SetDefault("source.bridge_url", "http://localhost:3001")
	v.SetDefault("source.timeout", 10*time.Second)
	v.SetDefault("source.project", "")
	v.SetDefault("source.dataset", "posto")
	v.SetDefault("source.mock_seed", 1)
	v.SetDefault("source.mock_count", 150)

	v.SetDefault("export.delimiter", ",")
	v.SetDefault("export.filename_prefix", "vendas_frentistas")
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.object_prefix", "exports")

	v.SetDefault("insight.enabled", true)
	v.SetDefault("insight.model", "gemini-2.5-flash")
	v.SetDefault("insight.api_version", "v1")

	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")

	v.SetDefault("jobs.buffer_size", 100)
	v.SetDefault("jobs.workers", 5)
	v.SetDefault("jobs.max_retries", 3)
}

// LoadConfig loads configuration from an optional file and environment
// variables. An empty configPath uses defaults and environment only.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceMock:
	case SourceBridge:
		if c.Source.BridgeURL == "" {
			return fmt.Errorf("invalid config: source.bridge_url is required for the bridge source")
		}
	case SourceBigQuery:
		if c.Source.Project == "" {
			return fmt.Errorf("invalid config: source.project is required for the bigquery source")
		}
	default:
		return fmt.Errorf("invalid config: unknown source.kind %q", c.Source.Kind)
	}
	if c.Source.LookbackDays < 0 {
		return fmt.Errorf("invalid config: source.lookback_days must not be negative")
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("invalid config: jobs.workers must be at least 1")
	}
	return nil
}
