package app

import (
	"context"
	"testing"

	"github.com/dvloznov/posto-dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockConfig() *config.Config {
	return &config.Config{
		Source: config.SourceConfig{
			Kind:         config.SourceMock,
			MockSeed:     9,
			MockCount:    150,
			LookbackDays: 7,
		},
		Export: config.ExportConfig{Delimiter: ";"},
		Jobs:   config.JobsConfig{Workers: 1},
	}
}

func TestNew_MockSource(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, mockConfig())
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "mock", rt.Source.Name())
	assert.Nil(t, rt.Storage)

	require.NoError(t, rt.Service.Reload(ctx))
	assert.NotEmpty(t, rt.Service.Records())
	assert.Len(t, rt.Service.Attendants(), 4)
}

func TestNewSource(t *testing.T) {
	ctx := context.Background()

	src, closeFn, err := NewSource(ctx, config.SourceConfig{Kind: config.SourceBridge, BridgeURL: "http://localhost:3001"})
	require.NoError(t, err)
	assert.Equal(t, "bridge", src.Name())
	assert.NoError(t, closeFn())

	_, closeFn, err = NewSource(ctx, config.SourceConfig{Kind: "firebird"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestNew_BadDelimiter(t *testing.T) {
	cfg := mockConfig()
	cfg.Export.Delimiter = "::"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewSuggester_Disabled(t *testing.T) {
	s, err := NewSuggester(context.Background(), config.InsightConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, s)
}
