package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/docstore"
)

// ReferenceStudentRepository handles the roster used as the ingestion allow-list
type ReferenceStudentRepository struct {
	store docstore.Store
}

// NewReferenceStudentRepository creates a new roster repository
func NewReferenceStudentRepository(store docstore.Store) *ReferenceStudentRepository {
	return &ReferenceStudentRepository{store: store}
}

// StudentIDSet snapshots the allow-list
func (r *ReferenceStudentRepository) StudentIDSet(ctx context.Context) (map[string]struct{}, error) {
	docs, err := r.store.All(ctx, docstore.CollectionReferenceStudents)
	if err != nil {
		return nil, fmt.Errorf("error listing reference students: %w", err)
	}
	return studentIDSet(docs, models.FieldStudentID), nil
}

// Create inserts one roster entry
func (r *ReferenceStudentRepository) Create(ctx context.Context, student *models.ReferenceStudent) error {
	id, err := r.store.Add(ctx, docstore.CollectionReferenceStudents, student.ToDocument())
	if err != nil {
		return fmt.Errorf("error creating reference student %s: %w", student.StudentID, err)
	}
	student.ID = id
	return nil
}
