// Package repositories gives each collection a typed repository over the
// record store adapter.
package repositories

import (
	"context"
	"strconv"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	AlumniRepository           *AlumniRepository
	ReferenceStudentRepository *ReferenceStudentRepository
	EventRepository            *EventRepository
	EventAlumniRepository      *EventAlumniRepository
	UploadLogRepository        *UploadLogRepository
	UpdateRequestRepository    *UpdateRequestRepository
	AdminRepository            *AdminRepository
}

// NewRepositories initializes all repositories over one store
func NewRepositories(store docstore.Store) *Repositories {
	return &Repositories{
		AlumniRepository:           NewAlumniRepository(store),
		ReferenceStudentRepository: NewReferenceStudentRepository(store),
		EventRepository:            NewEventRepository(store),
		EventAlumniRepository:      NewEventAlumniRepository(store),
		UploadLogRepository:        NewUploadLogRepository(store),
		UpdateRequestRepository:    NewUpdateRequestRepository(store),
		AdminRepository:            NewAdminRepository(store),
	}
}

// findByStudentID matches Student IDs the way the validation snapshot does,
// through models.NormalizeStudentID. The stored forms the imports produced
// (text, "1006.0", number) are queried directly; when none hits, the
// collection is scanned so padded or otherwise irregular values still match.
func findByStudentID(ctx context.Context, store docstore.Store, collection, field, studentID string) ([]docstore.Document, error) {
	id := models.NormalizeStudentID(studentID)
	if id == "" {
		return nil, nil
	}

	candidates := []any{id, id + ".0"}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		candidates = append(candidates, n)
	}
	if studentID != id {
		candidates = append(candidates, studentID)
	}

	var out []docstore.Document
	seen := make(map[string]struct{})
	for _, value := range candidates {
		docs, err := store.FindBy(ctx, collection, field, value)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if _, dup := seen[doc.ID]; dup {
				continue
			}
			seen[doc.ID] = struct{}{}
			out = append(out, doc)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	all, err := store.All(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, doc := range all {
		raw, ok := docstore.AsString(doc.Data[field])
		if ok && models.NormalizeStudentID(raw) == id {
			out = append(out, doc)
		}
	}
	return out, nil
}

// decodeAll decodes every document, skipping and logging the ones that fail
func decodeAll[T any](collection string, docs []docstore.Document, decode func(docstore.Document) (*T, error)) []*T {
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode(doc)
		if err != nil {
			logger.Warn().Err(err).Str("collection", collection).Str("id", doc.ID).Msg("Skipping unreadable document")
			continue
		}
		out = append(out, v)
	}
	return out
}
