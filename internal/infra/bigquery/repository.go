// Package bigquery reads fueling data from a BigQuery mirror of the POS
// database. It never writes.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/domain"
)

// DefaultDataset holds the abastecimentos and funcionarios tables.
const DefaultDataset = "posto"

// FuelingRepository is a source.Source backed by BigQuery. It holds a shared
// client to avoid creating a new connection for each query.
type FuelingRepository struct {
	client  *bigquery.Client
	project string
	dataset string
}

// NewFuelingRepository creates a repository with its own BigQuery client.
func NewFuelingRepository(ctx context.Context, project, dataset string) (*FuelingRepository, error) {
	if project == "" {
		return nil, fmt.Errorf("NewFuelingRepository: project is required")
	}
	if dataset == "" {
		dataset = DefaultDataset
	}
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewFuelingRepository: creating client: %w", err)
	}
	return &FuelingRepository{client: client, project: project, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (r *FuelingRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Name implements source.Source.
func (r *FuelingRepository) Name() string { return "bigquery" }

// Fuelings implements source.Source.
func (r *FuelingRepository) Fuelings(ctx context.Context, start, end civil.Date) ([]domain.FuelingRecord, error) {
	rows, err := QueryFuelingsByDateRangeWithClient(ctx, r.client, r.project, r.dataset, start, end)
	if err != nil {
		return nil, err
	}
	records := make([]domain.FuelingRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ToFuelingRecord(row))
	}
	return records, nil
}

// Attendants implements source.Source.
func (r *FuelingRepository) Attendants(ctx context.Context) ([]domain.Attendant, error) {
	rows, err := ListAttendantsWithClient(ctx, r.client, r.project, r.dataset)
	if err != nil {
		return nil, err
	}
	attendants := make([]domain.Attendant, 0, len(rows))
	for _, row := range rows {
		attendants = append(attendants, ToAttendant(row))
	}
	return attendants, nil
}
