// Package app builds the dashboard's collaborators from configuration. It is
// shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/posto-dashboard/internal/config"
	"github.com/dvloznov/posto-dashboard/internal/csvexport"
	"github.com/dvloznov/posto-dashboard/internal/dashboard"
	"github.com/dvloznov/posto-dashboard/internal/gcs"
	"github.com/dvloznov/posto-dashboard/internal/gcsuploader"
	infraBQ "github.com/dvloznov/posto-dashboard/internal/infra/bigquery"
	"github.com/dvloznov/posto-dashboard/internal/insight"
	"github.com/dvloznov/posto-dashboard/internal/logger"
	"github.com/dvloznov/posto-dashboard/internal/source"
	"github.com/dvloznov/posto-dashboard/internal/source/bridge"
	"github.com/dvloznov/posto-dashboard/internal/source/mock"
)

// Runtime holds the built service and what must be closed with it.
type Runtime struct {
	Service *dashboard.Service
	Source  source.Source
	Storage gcs.StorageService

	closers []func() error
}

// Close releases clients in reverse creation order.
func (r *Runtime) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewSource opens the configured record source. The returned close function
// is never nil.
func NewSource(ctx context.Context, cfg config.SourceConfig) (source.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.SourceMock:
		return mock.New(cfg.MockSeed, cfg.MockCount), noop, nil
	case config.SourceBridge:
		return bridge.New(cfg.BridgeURL, cfg.Timeout), noop, nil
	case config.SourceBigQuery:
		repo, err := infraBQ.NewFuelingRepository(ctx, cfg.Project, cfg.Dataset)
		if err != nil {
			return nil, noop, fmt.Errorf("NewSource: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return nil, noop, fmt.Errorf("NewSource: unknown source kind %q", cfg.Kind)
	}
}

// NewSuggester returns nil when insights are disabled.
func NewSuggester(ctx context.Context, cfg config.InsightConfig) (insight.Suggester, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	s, err := insight.NewGeminiSuggester(ctx, cfg.Model, cfg.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("NewSuggester: %w", err)
	}
	return s, nil
}

// NewStorage opens the object storage client used for exports.
func NewStorage(ctx context.Context) (*gcsuploader.GCSStorageService, error) {
	svc, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewStorage: %w", err)
	}
	return svc, nil
}

// New builds the dashboard service. It does not load data; call Reload.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	log := logger.FromContext(ctx)
	rt := &Runtime{}

	src, closeSrc, err := NewSource(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	rt.Source = src
	rt.closers = append(rt.closers, closeSrc)

	delimiter, err := csvexport.ParseDelimiter(cfg.Export.Delimiter)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("New: export.delimiter: %w", err)
	}

	var storage gcs.StorageService
	if cfg.Export.Bucket != "" {
		svc, err := NewStorage(ctx)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("New: %w", err)
		}
		storage = svc
		rt.Storage = svc
		rt.closers = append(rt.closers, svc.Close)
	} else {
		log.Warn().Msg("No export bucket configured - exports to storage are disabled")
	}

	suggester, err := NewSuggester(ctx, cfg.Insight)
	if err != nil {
		// Non-fatal: the dashboard runs without insights.
		log.Warn().Err(err).Msg("Insights disabled")
		suggester = nil
	}

	rt.Service = dashboard.NewService(src, storage, suggester, dashboard.Options{
		UnknownLabel:   cfg.Source.UnknownLabel,
		LookbackDays:   cfg.Source.LookbackDays,
		Delimiter:      delimiter,
		FilenamePrefix: cfg.Export.FilenamePrefix,
		Bucket:         cfg.Export.Bucket,
		ObjectPrefix:   cfg.Export.ObjectPrefix,
	})

	log.Info().
		Str("source", src.Name()).
		Bool("storage", storage != nil).
		Bool("insight", suggester != nil).
		Msg("Dashboard service ready")

	return rt, nil
}
