package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// UploadLogRepository handles file_upload_logs
type UploadLogRepository struct {
	store docstore.Store
}

// NewUploadLogRepository creates a new upload log repository
func NewUploadLogRepository(store docstore.Store) *UploadLogRepository {
	return &UploadLogRepository{store: store}
}

// Create inserts a log entry
func (r *UploadLogRepository) Create(ctx context.Context, log *models.UploadLog) error {
	id, err := r.store.Add(ctx, docstore.CollectionUploadLogs, log.ToDocument())
	if err != nil {
		logger.Error().Err(err).Str("fileName", log.FileName).Msg("Error creating upload log")
		return fmt.Errorf("error creating upload log: %w", err)
	}
	log.ID = id
	return nil
}

// MarkCompleted closes a log entry with the number of rows written
func (r *UploadLogRepository) MarkCompleted(ctx context.Context, id, eventID string, rows int) error {
	err := r.store.Update(ctx, docstore.CollectionUploadLogs, id, map[string]any{
		models.FieldStatus:        string(models.UploadCompleted),
		models.FieldRowsProcessed: rows,
		models.FieldEventID:       eventID,
	})
	if err != nil {
		return fmt.Errorf("error completing upload log %s: %w", id, err)
	}
	return nil
}

// GetByID returns one log entry
func (r *UploadLogRepository) GetByID(ctx context.Context, id string) (*models.UploadLog, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUploadLogs, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving upload log: %w", err)
	}
	return models.DecodeUploadLog(*doc)
}

// GetAll returns every readable log entry
func (r *UploadLogRepository) GetAll(ctx context.Context) ([]*models.UploadLog, error) {
	docs, err := r.store.All(ctx, docstore.CollectionUploadLogs)
	if err != nil {
		return nil, fmt.Errorf("error listing upload logs: %w", err)
	}
	return decodeAll(docstore.CollectionUploadLogs, docs, models.DecodeUploadLog), nil
}
