package filestore

import (
	"context"
	"io"
)

// Store abstracts the file storage behind attachments.
type Store interface {
	// FileExists reports whether the backing object for a stored path exists.
	FileExists(ctx context.Context, path string) (bool, error)
	// GetFile streams the object at the stored path.
	GetFile(ctx context.Context, path string) (io.ReadCloser, error)
	// SaveFile writes the stream under the given path and returns the stored
	// path, which may differ from the requested one.
	SaveFile(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error)
}
