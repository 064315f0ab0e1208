package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the narrow port profile images go through.
type Storage interface {
	// Write stores content under key. size is the expected content size
	// (-1 if unknown) and contentType its MIME type.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key. The caller closes the
	// returned ReadCloser.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key.
	Delete(ctx context.Context, key string) error

	// GetURL returns a URL for accessing the content. For local storage
	// this is a server-relative path; for S3 a presigned URL valid for the
	// given duration.
	GetURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
