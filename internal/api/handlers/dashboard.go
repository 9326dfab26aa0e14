package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/dvloznov/posto-dashboard/internal/aggregate"
	"github.com/dvloznov/posto-dashboard/internal/api/middleware"
	"github.com/dvloznov/posto-dashboard/internal/csvexport"
	"github.com/dvloznov/posto-dashboard/internal/dashboard"
	"github.com/dvloznov/posto-dashboard/internal/filter"
	"github.com/dvloznov/posto-dashboard/internal/logger"
)

// DashboardHandler serves the dashboard read endpoints.
type DashboardHandler struct {
	svc DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) spec(w http.ResponseWriter, r *http.Request) (filter.Spec, bool) {
	spec, err := filter.ParseSpec(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return filter.Spec{}, false
	}
	return spec, true
}

// SourceStatus handles GET /api/source/status
func (h *DashboardHandler) SourceStatus(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.SourceStatus(r.Context()))
}

// Reload handles POST /api/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	if err := h.svc.Reload(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to reload data")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to reload data from source")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.svc.SourceStatus(r.Context()))
}

// ListAttendants handles GET /api/attendants
func (h *DashboardHandler) ListAttendants(w http.ResponseWriter, r *http.Request) {
	attendants := h.svc.Attendants()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendants": attendants,
		"count":      len(attendants),
	})
}

// ListFuelings handles GET /api/fuelings
func (h *DashboardHandler) ListFuelings(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.spec(w, r)
	if !ok {
		return
	}
	res := h.svc.Filter(r.Context(), spec)

	invalid := res.InvalidDates
	if invalid == nil {
		invalid = []filter.InvalidDate{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"records":       res.Records,
		"count":         len(res.Records),
		"invalid_dates": invalid,
	})
}

// Overview handles GET /api/dashboard
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.spec(w, r)
	if !ok {
		return
	}
	ov, err := h.svc.Overview(r.Context(), spec)
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err, "Failed to compute dashboard")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, ov)
}

// Detailed handles GET /api/attendants/detailed
func (h *DashboardHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.spec(w, r)
	if !ok {
		return
	}
	order, err := aggregate.ParseSalesOrder(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	groups, err := h.svc.Detailed(r.Context(), spec, order)
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err, "Failed to group sales")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendants": groups,
		"count":      len(groups),
	})
}

// ExportCSV handles GET /api/export.csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.spec(w, r)
	if !ok {
		return
	}
	delimiter, err := csvexport.ParseDelimiter(r.URL.Query().Get("delimiter"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("delimiter") == "" {
		delimiter = 0
	}

	// Rendered to a buffer first so a failure can still become a JSON error.
	var buf bytes.Buffer
	rows, err := h.svc.ExportCSV(r.Context(), &buf, spec, delimiter)
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err, "Failed to export CSV")
		return
	}

	filename := h.svc.ExportFilename(spec, r.URL.Query().Get("prefix"))
	ctxLog := logger.FromContext(r.Context())
	ctxLog.Info().Str("filename", filename).Int("rows", rows).Msg("CSV export")

	w.Header().Set("Content-Type", dashboard.CSVContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(buf.Bytes())
}

// ExportAttendantsCSV handles GET /api/attendants.csv
func (h *DashboardHandler) ExportAttendantsCSV(w http.ResponseWriter, r *http.Request) {
	delimiter, err := csvexport.ParseDelimiter(r.URL.Query().Get("delimiter"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("delimiter") == "" {
		delimiter = 0
	}

	var buf bytes.Buffer
	if err := h.svc.ExportAttendantsCSV(&buf, delimiter); err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err, "Failed to export attendants")
		return
	}

	w.Header().Set("Content-Type", dashboard.CSVContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\"frentistas.csv\"")
	w.Write(buf.Bytes())
}

// Insight handles POST /api/insight. The filter is read from the query
// string. A failed model call still answers 200 with the display message.
func (h *DashboardHandler) Insight(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.spec(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Insight(r.Context(), spec)
	if errors.Is(err, dashboard.ErrInsightDisabled) {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Insights are disabled")
		return
	}
	if err != nil {
		writeServiceError(w, logger.FromContext(r.Context()), err, "Failed to prepare insight")
		return
	}

	body := map[string]interface{}{"suggestion": res.Text}
	if res.Err != nil {
		body["error"] = res.Err.Error()
	}
	middleware.WriteJSON(w, http.StatusOK, body)
}
