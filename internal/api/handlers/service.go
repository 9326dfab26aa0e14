package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dvloznov/posto-dashboard/internal/aggregate"
	"github.com/dvloznov/posto-dashboard/internal/api/middleware"
	"github.com/dvloznov/posto-dashboard/internal/dashboard"
	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/dvloznov/posto-dashboard/internal/filter"
	"github.com/dvloznov/posto-dashboard/internal/insight"
	"github.com/rs/zerolog"
)

// DashboardService is what the handlers need from dashboard.Service.
type DashboardService interface {
	Reload(ctx context.Context) error
	Records() []domain.EnrichedRecord
	Attendants() []domain.Attendant
	SourceStatus(ctx context.Context) dashboard.Status
	Filter(ctx context.Context, spec filter.Spec) filter.Result
	Overview(ctx context.Context, spec filter.Spec) (*dashboard.Overview, error)
	Detailed(ctx context.Context, spec filter.Spec, order aggregate.SalesOrder) ([]aggregate.AttendantDetail, error)
	ExportCSV(ctx context.Context, w io.Writer, spec filter.Spec, delimiter rune) (int, error)
	ExportAttendantsCSV(w io.Writer, delimiter rune) error
	ExportFilename(spec filter.Spec, prefix string) string
	Insight(ctx context.Context, spec filter.Spec) (insight.Result, error)
}

var _ DashboardService = (*dashboard.Service)(nil)

// nonNumericMessage is shown when the data contains a value that is not a
// number where one is required.
const nonNumericMessage = "Os dados contêm um valor não numérico; corrija a origem e recarregue."

// writeServiceError maps service errors to HTTP responses. Bad source data
// is the caller's problem to fix upstream, so it is 422 rather than 500.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error, msg string) {
	var nn *aggregate.NonNumericError
	switch {
	case errors.As(err, &nn):
		log.Warn().Err(err).Int("index", nn.Index).Str("field", nn.Field).Msg(msg)
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": nonNumericMessage,
			"field": nn.Field,
			"value": nn.Raw,
		})
	case errors.Is(err, domain.ErrNonNumericAmount):
		log.Warn().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusUnprocessableEntity, nonNumericMessage)
	default:
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusInternalServerError, msg)
	}
}
