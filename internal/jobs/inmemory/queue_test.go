package inmemory

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/posto-dashboard/internal/jobs"
)

func waitForStatus(t *testing.T, s *Store, id string, want jobs.JobStatus) *jobs.ExportJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.GetJob(context.Background(), id)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := s.GetJob(context.Background(), id)
	t.Fatalf("job %s did not reach %s, last state %+v", id, want, job)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(Options{Workers: 1}, store)
	defer q.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		export := job.(*jobs.ExportJob)
		export.ResultURI = "gs://b/exports/x.csv"
		export.RowCount = 12
		return nil
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ExportJob{Query: "attendant=Bia"}
	if err := q.PublishExport(ctx, job); err != nil {
		t.Fatalf("PublishExport: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("PublishExport did not assign an ID")
	}
	if job.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", job.MaxRetries, DefaultMaxRetries)
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.ResultURI != "gs://b/exports/x.csv" || done.RowCount != 12 {
		t.Errorf("unexpected result %+v", done)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("timestamps not set")
	}
}

func TestQueue_RetriesThenFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(Options{Workers: 1, MaxRetries: 2, Backoff: time.Millisecond}, store)
	defer q.Close()

	var calls int32
	handler := func(ctx context.Context, job jobs.Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("bucket unavailable")
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ExportJob{}
	if err := q.PublishExport(ctx, job); err != nil {
		t.Fatalf("PublishExport: %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", failed.RetryCount)
	}
	if failed.Error != "bucket unavailable" {
		t.Errorf("Error = %q", failed.Error)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("handler called %d times, want 3", got)
	}
}

func TestQueue_RetryAfterStopMarksFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(Options{Workers: 1, MaxRetries: 3, Backoff: 200 * time.Millisecond}, store)

	handler := func(ctx context.Context, job jobs.Job) error {
		return errors.New("bucket unavailable")
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ExportJob{}
	if err := q.PublishExport(ctx, job); err != nil {
		t.Fatalf("PublishExport: %v", err)
	}
	waitForStatus(t, store, job.JobID, jobs.JobStatusRetrying)

	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if !strings.Contains(failed.Error, jobs.ErrQueueClosed.Error()) {
		t.Errorf("Error = %q, want it to mention the closed queue", failed.Error)
	}
	if failed.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", failed.RetryCount)
	}
}

func TestQueue_PublishAfterStop(t *testing.T) {
	q := NewQueue(Options{}, nil)
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	err := q.PublishExport(context.Background(), &jobs.ExportJob{})
	if !errors.Is(err, jobs.ErrQueueClosed) {
		t.Errorf("error = %v, want ErrQueueClosed", err)
	}
	if err := q.Start(context.Background(), nil); !errors.Is(err, jobs.ErrQueueClosed) {
		t.Errorf("Start error = %v, want ErrQueueClosed", err)
	}
}
