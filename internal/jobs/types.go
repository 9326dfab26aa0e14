package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExportCSV writes a filtered CSV export to object storage.
	JobTypeExportCSV JobType = "export_csv"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ExportJob asks for the records matching Query to be written as CSV to
// Destination.
type ExportJob struct {
	JobID string `json:"job_id"`

	// Query holds the filter parameters in URL query form
	// (start_date=2024-03-01&attendant=Bia).
	Query string `json:"query,omitempty"`

	// Delimiter is the CSV field separator name or character; empty means comma.
	Delimiter string `json:"delimiter,omitempty"`

	// Destination is a gs:// URI. When empty the service derives one from
	// the configured bucket, prefix and export filename.
	Destination string `json:"destination,omitempty"`

	// ResultURI and RowCount are filled in when the export completes.
	ResultURI string `json:"result_uri,omitempty"`
	RowCount  int    `json:"row_count"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the last attempt failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ExportJob) GetID() string { return j.JobID }

// GetType implements the Job interface.
func (j *ExportJob) GetType() JobType { return JobTypeExportCSV }

// GetStatus implements the Job interface.
func (j *ExportJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs.
type Publisher interface {
	// PublishExport enqueues an export job, assigning an ID and defaults.
	PublishExport(ctx context.Context, job *ExportJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer runs jobs taken from a queue.
type Consumer interface {
	// Start launches the workers. The handler is called for each job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A non-nil error marks the attempt as failed
// and the job is retried until MaxRetries is reached.
type JobHandler func(ctx context.Context, job Job) error

// JobStore keeps job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExportJob) error
	GetJob(ctx context.Context, jobID string) (*ExportJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExportJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
