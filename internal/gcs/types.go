// Package gcs holds the object-store contract used for CSV exports and the
// gs:// URI helpers shared by its implementations.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

const scheme = "gs://"

// StorageService stores and retrieves export files.
type StorageService interface {
	// Upload writes r to the object at uri with the given content type.
	Upload(ctx context.Context, uri string, r io.Reader, contentType string) error

	// Fetch downloads the object at uri.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// ParseURI splits "gs://bucket/path/to/file.csv" into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, scheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// URI builds a gs:// URI from bucket and object name.
func URI(bucket, object string) string {
	return scheme + bucket + "/" + strings.TrimLeft(object, "/")
}

// ObjectName joins prefix and filename into an object name, e.g.
// ("exports", "vendas.csv") → "exports/vendas.csv".
func ObjectName(prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return filename
	}
	return path.Join(prefix, filename)
}

// Filename extracts the last path element of a URI.
// e.g., "gs://bucket/folder/file.csv" → "file.csv"
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, scheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
