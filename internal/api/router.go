// Package api wires the HTTP routes of the dashboard backend.
package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/posto-dashboard/internal/api/handlers"
	"github.com/dvloznov/posto-dashboard/internal/api/middleware"
	"github.com/dvloznov/posto-dashboard/internal/jobs"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the routes need. Publisher may be nil.
type Deps struct {
	Service   handlers.DashboardService
	JobStore  jobs.JobStore
	Publisher jobs.Publisher
	Log       zerolog.Logger
}

// NewRouter builds the HTTP handler with middleware applied.
func NewRouter(d Deps) http.Handler {
	dash := handlers.NewDashboardHandler(d.Service)
	jobsHandler := handlers.NewJobsHandler(d.JobStore, d.Publisher)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/source/status", dash.SourceStatus)
		r.Post("/reload", dash.Reload)

		r.Get("/attendants", dash.ListAttendants)
		r.Get("/attendants.csv", dash.ExportAttendantsCSV)
		r.Get("/attendants/detailed", dash.Detailed)
		r.Get("/fuelings", dash.ListFuelings)
		r.Get("/dashboard", dash.Overview)
		r.Get("/export.csv", dash.ExportCSV)
		r.Post("/insight", dash.Insight)

		r.Post("/exports", jobsHandler.EnqueueExport)
		r.Get("/jobs", jobsHandler.ListJobs)
		r.Get("/jobs/{id}", jobsHandler.GetJob)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
