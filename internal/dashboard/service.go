// Package dashboard keeps the loaded sales snapshot and answers the
// dashboard's questions about it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/aggregate"
	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/dvloznov/posto-dashboard/internal/filter"
	"github.com/dvloznov/posto-dashboard/internal/gcs"
	"github.com/dvloznov/posto-dashboard/internal/insight"
	"github.com/dvloznov/posto-dashboard/internal/logger"
	"github.com/dvloznov/posto-dashboard/internal/source"
)

var (
	// ErrInsightDisabled is returned when no suggester is configured.
	ErrInsightDisabled = errors.New("insight suggestions are disabled")

	// ErrStorageDisabled is returned when an export job needs object storage
	// and none is configured.
	ErrStorageDisabled = errors.New("export storage is not configured")
)

// Options configures a Service.
type Options struct {
	UnknownLabel string
	// LookbackDays is how many days, today included, Reload fetches.
	LookbackDays int

	Delimiter      rune
	FilenamePrefix string
	Bucket         string
	ObjectPrefix   string

	Now func() time.Time
}

// Service serves dashboard queries from an immutable snapshot that Reload
// replaces wholesale. It is safe for concurrent use.
type Service struct {
	src       source.Source
	storage   gcs.StorageService
	suggester insight.Suggester
	opts      Options

	mu       sync.RWMutex
	snap     *source.Snapshot
	loadedAt time.Time
}

// NewService creates a service. storage and suggester may be nil, which
// disables export jobs and insights respectively.
func NewService(src source.Source, storage gcs.StorageService, suggester insight.Suggester, opts Options) *Service {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{src: src, storage: storage, suggester: suggester, opts: opts}
}

// Reload fetches the lookback window from the source and swaps the snapshot.
// On failure the previous snapshot is kept.
func (s *Service) Reload(ctx context.Context) error {
	end := civil.DateOf(s.opts.Now())
	start := end.AddDays(-(s.opts.LookbackDays - 1))

	snap, err := source.Load(ctx, s.src, start, end, s.opts.UnknownLabel)
	if err != nil {
		return fmt.Errorf("Reload: %w", err)
	}

	s.mu.Lock()
	s.snap = snap
	s.loadedAt = s.opts.Now()
	s.mu.Unlock()

	return nil
}

func (s *Service) snapshot() *source.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return &source.Snapshot{}
	}
	return s.snap
}

// Records returns the loaded records. The slice is shared; callers must not
// modify it.
func (s *Service) Records() []domain.EnrichedRecord {
	return s.snapshot().Records
}

// Attendants returns the loaded attendant roster.
func (s *Service) Attendants() []domain.Attendant {
	return s.snapshot().Attendants
}

// Status describes the source and the current snapshot.
type Status struct {
	Source     string    `json:"source"`
	Online     bool      `json:"online"`
	Error      string    `json:"error,omitempty"`
	Records    int       `json:"records"`
	Attendants int       `json:"attendants"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// SourceStatus pings the source once when it supports it.
func (s *Service) SourceStatus(ctx context.Context) Status {
	s.mu.RLock()
	snap, loadedAt := s.snap, s.loadedAt
	s.mu.RUnlock()

	st := Status{Source: s.src.Name(), Online: true, LoadedAt: loadedAt}
	if snap != nil {
		st.Records = len(snap.Records)
		st.Attendants = len(snap.Attendants)
		st.Start = snap.Start.String()
		st.End = snap.End.String()
	}
	if p, ok := s.src.(source.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			st.Online = false
			st.Error = err.Error()
		}
	}
	return st
}

// Filter applies spec to the snapshot and logs unparseable dates.
func (s *Service) Filter(ctx context.Context, spec filter.Spec) filter.Result {
	res := filter.Apply(s.Records(), spec)
	if len(res.InvalidDates) > 0 {
		log := logger.FromContext(ctx)
		for _, d := range res.InvalidDates {
			log.Warn().Int("index", d.Index).Str("dt_caixa", d.Raw).Msg("Unparseable transaction date, record kept")
		}
	}
	return res
}

// Overview is the main dashboard payload.
type Overview struct {
	Stats        aggregate.Stats            `json:"stats"`
	ByAttendant  []aggregate.AttendantTotal `json:"by_attendant"`
	ByFuel       []aggregate.FuelTotal      `json:"by_fuel"`
	InvalidDates []filter.InvalidDate       `json:"invalid_dates"`
}

// Overview filters and aggregates in one pass over the snapshot.
func (s *Service) Overview(ctx context.Context, spec filter.Spec) (*Overview, error) {
	res := s.Filter(ctx, spec)

	stats, err := aggregate.ComputeStats(res.Records)
	if err != nil {
		return nil, fmt.Errorf("Overview: %w", err)
	}
	byAttendant, err := aggregate.GroupByAttendant(res.Records)
	if err != nil {
		return nil, fmt.Errorf("Overview: %w", err)
	}
	byFuel, err := aggregate.GroupByFuelType(res.Records)
	if err != nil {
		return nil, fmt.Errorf("Overview: %w", err)
	}

	invalid := res.InvalidDates
	if invalid == nil {
		invalid = []filter.InvalidDate{}
	}
	return &Overview{
		Stats:        stats,
		ByAttendant:  byAttendant,
		ByFuel:       byFuel,
		InvalidDates: invalid,
	}, nil
}

// Detailed returns per-attendant groups with their sales in the given order.
func (s *Service) Detailed(ctx context.Context, spec filter.Spec, order aggregate.SalesOrder) ([]aggregate.AttendantDetail, error) {
	res := s.Filter(ctx, spec)
	groups, err := aggregate.GroupByAttendantDetailed(res.Records, order)
	if err != nil {
		return nil, fmt.Errorf("Detailed: %w", err)
	}
	return groups, nil
}

// Insight asks the configured suggester about the filtered data. Model
// failures are not errors: they come back as a displayable Result with Err
// set. Errors are returned only for bad data or a missing suggester.
func (s *Service) Insight(ctx context.Context, spec filter.Spec) (insight.Result, error) {
	if s.suggester == nil {
		return insight.Result{}, ErrInsightDisabled
	}

	res := s.Filter(ctx, spec)
	stats, err := aggregate.ComputeStats(res.Records)
	if err != nil {
		return insight.Result{}, fmt.Errorf("Insight: %w", err)
	}
	ranking, err := aggregate.GroupByAttendant(res.Records)
	if err != nil {
		return insight.Result{}, fmt.Errorf("Insight: %w", err)
	}

	result := insight.Suggest(ctx, s.suggester, insight.NewSummary(stats, ranking, spec.StartDate, spec.EndDate))
	if result.Err != nil {
		ctxLog := logger.FromContext(ctx)
		ctxLog.Error().Err(result.Err).Msg("Insight generation failed")
	}
	return result, nil
}
