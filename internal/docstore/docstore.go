// Package docstore is the record store adapter: schema-less documents grouped
// into named collections, addressed by id or by single-field equality.
package docstore

import (
	"context"
)

// Collection names used by the application
const (
	CollectionAlumni            = "alumni"
	CollectionReferenceStudents = "Student_Data_2016_2025"
	CollectionAdmins            = "admin"
	CollectionEvents            = "events"
	CollectionEventAlumni       = "event_alumni"
	CollectionUploadLogs        = "file_upload_logs"
	CollectionUpdateRequests    = "Alumni_Form_Requests"
)

// Document is one stored record. Data holds the raw field values as the
// backend returned them; typed decoding happens in the models package.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is implemented by every backend.
type Store interface {
	// FindBy returns every document in collection whose field equals value.
	FindBy(ctx context.Context, collection, field string, value any) ([]Document, error)
	// All returns every document in collection.
	All(ctx context.Context, collection string) ([]Document, error)
	// Get returns one document or an error wrapping apperrors.ErrResourceNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Add inserts data under a new id and returns it.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// cloneData copies the top-level map so callers never share backend state
func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
