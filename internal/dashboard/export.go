package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/dvloznov/posto-dashboard/internal/csvexport"
	"github.com/dvloznov/posto-dashboard/internal/filter"
	"github.com/dvloznov/posto-dashboard/internal/gcs"
	"github.com/dvloznov/posto-dashboard/internal/jobs"
	"github.com/dvloznov/posto-dashboard/internal/logger"
)

// CSVContentType is served and stored with exports.
const CSVContentType = "text/csv; charset=utf-8"

// ExportCSV writes the filtered records as CSV and returns the row count.
// A zero delimiter uses the configured one.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, spec filter.Spec, delimiter rune) (int, error) {
	if delimiter == 0 {
		delimiter = s.opts.Delimiter
	}
	res := s.Filter(ctx, spec)
	if err := csvexport.Write(w, res.Records, csvexport.DefaultColumns(), csvexport.Options{Delimiter: delimiter}); err != nil {
		return 0, fmt.Errorf("ExportCSV: %w", err)
	}
	return len(res.Records), nil
}

// ExportAttendantsCSV writes the attendant roster as CSV.
func (s *Service) ExportAttendantsCSV(w io.Writer, delimiter rune) error {
	if delimiter == 0 {
		delimiter = s.opts.Delimiter
	}
	header, rows := csvexport.AttendantTable(s.Attendants())
	if err := csvexport.WriteTable(w, header, rows, csvexport.Options{Delimiter: delimiter}); err != nil {
		return fmt.Errorf("ExportAttendantsCSV: %w", err)
	}
	return nil
}

// ExportFilename names the export of spec, using prefix or the configured one.
func (s *Service) ExportFilename(spec filter.Spec, prefix string) string {
	if prefix == "" {
		prefix = s.opts.FilenamePrefix
	}
	return csvexport.Filename(prefix, spec.StartDate, spec.EndDate, s.opts.Now())
}

// ExportDestination derives the gs:// URI for an export of spec.
func (s *Service) ExportDestination(spec filter.Spec) (string, error) {
	if s.opts.Bucket == "" {
		return "", fmt.Errorf("ExportDestination: %w", ErrStorageDisabled)
	}
	object := gcs.ObjectName(s.opts.ObjectPrefix, s.ExportFilename(spec, ""))
	return gcs.URI(s.opts.Bucket, object), nil
}

// RunExportJob is the jobs.JobHandler for export jobs: filter, render CSV,
// upload.
func (s *Service) RunExportJob(ctx context.Context, job jobs.Job) error {
	export, ok := job.(*jobs.ExportJob)
	if !ok {
		return fmt.Errorf("RunExportJob: unsupported job type %s", job.GetType())
	}
	if s.storage == nil {
		return fmt.Errorf("RunExportJob: %w", ErrStorageDisabled)
	}

	query, err := url.ParseQuery(export.Query)
	if err != nil {
		return fmt.Errorf("RunExportJob: parse query: %w", err)
	}
	spec, err := filter.ParseSpec(query)
	if err != nil {
		return fmt.Errorf("RunExportJob: %w", err)
	}
	delimiter, err := csvexport.ParseDelimiter(export.Delimiter)
	if err != nil {
		return fmt.Errorf("RunExportJob: %w", err)
	}
	if export.Delimiter == "" {
		delimiter = 0
	}

	destination := export.Destination
	if destination == "" {
		if destination, err = s.ExportDestination(spec); err != nil {
			return fmt.Errorf("RunExportJob: %w", err)
		}
	}

	var buf bytes.Buffer
	rows, err := s.ExportCSV(ctx, &buf, spec, delimiter)
	if err != nil {
		return fmt.Errorf("RunExportJob: %w", err)
	}

	if err := s.storage.Upload(ctx, destination, &buf, CSVContentType); err != nil {
		return fmt.Errorf("RunExportJob: %w", err)
	}

	export.ResultURI = destination
	export.RowCount = rows

	ctxLog := logger.FromContext(ctx)
	ctxLog.Info().
		Str("job_id", export.JobID).
		Str("uri", destination).
		Int("rows", rows).
		Msg("Export uploaded")

	return nil
}
