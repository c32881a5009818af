// Package filestorage keeps raw uploaded spreadsheets so upload logs can point
// back at the exact file that was ingested.
package filestorage

import (
	"io"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save stores content under subPath with a unique name derived from
	// filename and returns the stored path
	Save(subPath, filename string, content io.Reader) (string, error)

	// Open returns the content of a stored file
	Open(storedPath string) (io.ReadCloser, error)

	// DeleteFile removes a stored file. Missing files are not an error.
	DeleteFile(storedPath string) error
}
