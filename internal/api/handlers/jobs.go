package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/posto-dashboard/internal/api/middleware"
	"github.com/dvloznov/posto-dashboard/internal/csvexport"
	"github.com/dvloznov/posto-dashboard/internal/filter"
	"github.com/dvloznov/posto-dashboard/internal/gcs"
	"github.com/dvloznov/posto-dashboard/internal/jobs"
	"github.com/dvloznov/posto-dashboard/internal/logger"
	"github.com/go-chi/chi/v5"
)

// JobsHandler handles export job endpoints.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
}

// NewJobsHandler creates a new jobs handler. publisher may be nil when
// exports to storage are disabled.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher) *JobsHandler {
	return &JobsHandler{
		store:     store,
		publisher: publisher,
	}
}

// exportRequest is the body of POST /api/exports. Filter is in the same
// form as the query parameters of GET /api/fuelings.
type exportRequest struct {
	Filter      map[string]string `json:"filter"`
	Delimiter   string            `json:"delimiter"`
	Destination string            `json:"destination"`
}

// EnqueueExport handles POST /api/exports
func (h *JobsHandler) EnqueueExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Exports to storage are disabled")
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := make(map[string][]string, len(req.Filter))
	for k, v := range req.Filter {
		query[k] = []string{v}
	}
	spec, err := filter.ParseSpec(query)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := csvexport.ParseDelimiter(req.Delimiter); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Destination != "" {
		if _, _, err := gcs.ParseURI(req.Destination); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	job := &jobs.ExportJob{
		Query:       spec.Values().Encode(),
		Delimiter:   req.Delimiter,
		Destination: req.Destination,
	}
	if err := h.publisher.PublishExport(ctx, job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue export job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue export job")
		return
	}

	log.Info().Str("job_id", job.JobID).Str("query", job.Query).Msg("Export job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.JobID,
		"status": job.Status,
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	job, err := h.store.GetJob(ctx, jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		ctxLog := logger.FromContext(ctx)
		ctxLog.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		ctxLog := logger.FromContext(ctx)
		ctxLog.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
