// Package gcsuploader implements gcs.StorageService on Google Cloud Storage.
// It assumes Application Default Credentials are configured
// (gcloud auth application-default login).
package gcsuploader

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/posto-dashboard/internal/gcs"
	"github.com/dvloznov/posto-dashboard/internal/logger"
)

// UploadTimeout bounds a single object write.
const UploadTimeout = 2 * time.Minute

// GCSStorageService uploads and downloads export files.
type GCSStorageService struct {
	client *storage.Client
}

// NewGCSStorageService creates a service with its own storage client.
func NewGCSStorageService(ctx context.Context) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStorageService: create storage client: %w", err)
	}
	return &GCSStorageService{client: client}, nil
}

// Close closes the storage client.
func (s *GCSStorageService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Upload implements gcs.StorageService.
func (s *GCSStorageService) Upload(ctx context.Context, uri string, r io.Reader, contentType string) error {
	bucket, object, err := gcs.ParseURI(uri)
	if err != nil {
		return fmt.Errorf("Upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize upload: %w", err)
	}

	ctxLog := logger.FromContext(ctx)
	ctxLog.Info().
		Str("uri", uri).
		Int64("bytes", n).
		Msg("Uploaded object")

	return nil
}

// Fetch implements gcs.StorageService.
func (s *GCSStorageService) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := gcs.ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}

	return data, nil
}
