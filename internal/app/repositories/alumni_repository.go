package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// AlumniRepository handles the alumni collection
type AlumniRepository struct {
	store docstore.Store
}

// NewAlumniRepository creates a new alumni repository
func NewAlumniRepository(store docstore.Store) *AlumniRepository {
	return &AlumniRepository{store: store}
}

// FindByStudentID returns every record whose normalised Student ID equals studentID
func (r *AlumniRepository) FindByStudentID(ctx context.Context, studentID string) ([]*models.AlumniRecord, error) {
	docs, err := findByStudentID(ctx, r.store, docstore.CollectionAlumni, models.FieldStudentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("error finding alumni %s: %w", studentID, err)
	}
	out := make([]*models.AlumniRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := models.DecodeAlumni(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetAll returns every readable alumni record
func (r *AlumniRepository) GetAll(ctx context.Context) ([]*models.AlumniRecord, error) {
	docs, err := r.store.All(ctx, docstore.CollectionAlumni)
	if err != nil {
		return nil, fmt.Errorf("error listing alumni: %w", err)
	}
	return decodeAll(docstore.CollectionAlumni, docs, models.DecodeAlumni), nil
}

// StudentIDSet snapshots the Student IDs present in the collection
func (r *AlumniRepository) StudentIDSet(ctx context.Context) (map[string]struct{}, error) {
	docs, err := r.store.All(ctx, docstore.CollectionAlumni)
	if err != nil {
		return nil, fmt.Errorf("error listing alumni ids: %w", err)
	}
	return studentIDSet(docs, models.FieldStudentID), nil
}

// Create inserts a new record
func (r *AlumniRepository) Create(ctx context.Context, fields map[string]any) (string, error) {
	id, err := r.store.Add(ctx, docstore.CollectionAlumni, fields)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating alumni record")
		return "", fmt.Errorf("error creating alumni record: %w", err)
	}
	return id, nil
}

// Update merges fields into the record
func (r *AlumniRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.store.Update(ctx, docstore.CollectionAlumni, id, fields); err != nil {
		logger.Error().Err(err).Str("id", id).Msg("Error updating alumni record")
		return fmt.Errorf("error updating alumni record: %w", err)
	}
	return nil
}

func studentIDSet(docs []docstore.Document, field string) map[string]struct{} {
	set := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		raw, ok := docstore.AsString(doc.Data[field])
		if !ok {
			continue
		}
		if id := models.NormalizeStudentID(raw); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
