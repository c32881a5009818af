package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// EventRepository handles event summaries
type EventRepository struct {
	store docstore.Store
}

// NewEventRepository creates a new event repository
func NewEventRepository(store docstore.Store) *EventRepository {
	return &EventRepository{store: store}
}

// Create inserts an event summary
func (r *EventRepository) Create(ctx context.Context, event *models.EventSummary) error {
	id, err := r.store.Add(ctx, docstore.CollectionEvents, event.ToDocument())
	if err != nil {
		logger.Error().Err(err).Str("eventId", event.EventID).Msg("Error creating event summary")
		return fmt.Errorf("error creating event summary: %w", err)
	}
	event.ID = id
	return nil
}

// GetAll returns every readable event summary
func (r *EventRepository) GetAll(ctx context.Context) ([]*models.EventSummary, error) {
	docs, err := r.store.All(ctx, docstore.CollectionEvents)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return decodeAll(docstore.CollectionEvents, docs, models.DecodeEvent), nil
}

// FindByEventID returns the summaries carrying eventID
func (r *EventRepository) FindByEventID(ctx context.Context, eventID string) ([]*models.EventSummary, error) {
	docs, err := r.store.FindBy(ctx, docstore.CollectionEvents, models.FieldEventID, eventID)
	if err != nil {
		return nil, fmt.Errorf("error finding event %s: %w", eventID, err)
	}
	return decodeAll(docstore.CollectionEvents, docs, models.DecodeEvent), nil
}

// EventAlumniRepository handles attendance links
type EventAlumniRepository struct {
	store docstore.Store
}

// NewEventAlumniRepository creates a new attendance link repository
func NewEventAlumniRepository(store docstore.Store) *EventAlumniRepository {
	return &EventAlumniRepository{store: store}
}

// Create inserts a link
func (r *EventAlumniRepository) Create(ctx context.Context, link *models.EventAlumniLink) error {
	id, err := r.store.Add(ctx, docstore.CollectionEventAlumni, link.ToDocument())
	if err != nil {
		return fmt.Errorf("error creating attendance link: %w", err)
	}
	link.ID = id
	return nil
}

// GetAll returns every readable link
func (r *EventAlumniRepository) GetAll(ctx context.Context) ([]*models.EventAlumniLink, error) {
	docs, err := r.store.All(ctx, docstore.CollectionEventAlumni)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance links: %w", err)
	}
	return decodeAll(docstore.CollectionEventAlumni, docs, models.DecodeEventAlumniLink), nil
}

// FindByEventID returns the links of one event
func (r *EventAlumniRepository) FindByEventID(ctx context.Context, eventID string) ([]*models.EventAlumniLink, error) {
	docs, err := r.store.FindBy(ctx, docstore.CollectionEventAlumni, models.FieldEventID, eventID)
	if err != nil {
		return nil, fmt.Errorf("error finding links of %s: %w", eventID, err)
	}
	return decodeAll(docstore.CollectionEventAlumni, docs, models.DecodeEventAlumniLink), nil
}

// SetSnapshot writes the graduation year and major copied from the alumni record
func (r *EventAlumniRepository) SetSnapshot(ctx context.Context, id string, graduationYear any, major string) error {
	err := r.store.Update(ctx, docstore.CollectionEventAlumni, id, map[string]any{
		models.FieldLinkGraduationYear: graduationYear,
		models.FieldLinkMajor:          major,
	})
	if err != nil {
		return fmt.Errorf("error updating attendance link %s: %w", id, err)
	}
	return nil
}
