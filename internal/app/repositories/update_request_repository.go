package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/docstore"
)

// UpdateRequestRepository handles Alumni_Form_Requests
type UpdateRequestRepository struct {
	store docstore.Store
}

// NewUpdateRequestRepository creates a new update request repository
func NewUpdateRequestRepository(store docstore.Store) *UpdateRequestRepository {
	return &UpdateRequestRepository{store: store}
}

// GetAll returns every readable request
func (r *UpdateRequestRepository) GetAll(ctx context.Context) ([]*models.UpdateRequest, error) {
	docs, err := r.store.All(ctx, docstore.CollectionUpdateRequests)
	if err != nil {
		return nil, fmt.Errorf("error listing update requests: %w", err)
	}
	return decodeAll(docstore.CollectionUpdateRequests, docs, models.DecodeUpdateRequest), nil
}

// GetByID returns one request
func (r *UpdateRequestRepository) GetByID(ctx context.Context, id string) (*models.UpdateRequest, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUpdateRequests, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving update request: %w", err)
	}
	return models.DecodeUpdateRequest(*doc)
}

// Create stores a submitted request
func (r *UpdateRequestRepository) Create(ctx context.Context, req *models.UpdateRequest) error {
	id, err := r.store.Add(ctx, docstore.CollectionUpdateRequests, req.ToDocument())
	if err != nil {
		return fmt.Errorf("error creating update request: %w", err)
	}
	req.ID = id
	return nil
}

// SetStatus records the review decision
func (r *UpdateRequestRepository) SetStatus(ctx context.Context, id string, status models.RequestStatus) error {
	err := r.store.Update(ctx, docstore.CollectionUpdateRequests, id, map[string]any{
		models.FieldRequestStat: string(status),
	})
	if err != nil {
		return fmt.Errorf("error updating request status: %w", err)
	}
	return nil
}
