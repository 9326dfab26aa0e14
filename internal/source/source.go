// Package source loads fueling records and attendants into memory.
package source

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/dvloznov/posto-dashboard/internal/logger"
)

// Source provides the raw data the dashboard works on.
type Source interface {
	// Name identifies the source in logs and status responses.
	Name() string

	// Fuelings returns the pump transactions between start and end, inclusive.
	Fuelings(ctx context.Context, start, end civil.Date) ([]domain.FuelingRecord, error)

	// Attendants returns the attendant roster.
	Attendants(ctx context.Context) ([]domain.Attendant, error)
}

// Pinger is implemented by sources that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Snapshot is the enriched data loaded at one point in time.
type Snapshot struct {
	Records    []domain.EnrichedRecord
	Attendants []domain.Attendant
	Start      civil.Date
	End        civil.Date
}

// Load fetches fuelings and attendants from src and joins them.
func Load(ctx context.Context, src Source, start, end civil.Date, unknownLabel string) (*Snapshot, error) {
	log := logger.FromContext(ctx)

	attendants, err := src.Attendants(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.Load: %s attendants: %w", src.Name(), err)
	}

	fuelings, err := src.Fuelings(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("source.Load: %s fuelings: %w", src.Name(), err)
	}

	records := domain.Enrich(fuelings, attendants, unknownLabel)

	var problems int
	for i, r := range fuelings {
		for _, perr := range r.Validate() {
			problems++
			log.Debug().Err(perr).Int("index", i).Str("cod_bico", r.NozzleCode).Msg("Record failed validation")
		}
	}

	log.Info().
		Str("source", src.Name()).
		Int("records", len(records)).
		Int("attendants", len(attendants)).
		Int("validation_problems", problems).
		Str("start", start.String()).
		Str("end", end.String()).
		Msg("Loaded fueling records")

	return &Snapshot{
		Records:    records,
		Attendants: attendants,
		Start:      start,
		End:        end,
	}, nil
}
