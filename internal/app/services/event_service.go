package services

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
)

const unknownAdmin = "Unknown"

// EventService lists upload logs and event summaries and records events by hand
type EventService interface {
	ListUploads(ctx context.Context) ([]dto.UploadLogResponse, error)
	ListEvents(ctx context.Context) ([]*models.EventSummary, error)
	CreateEvent(ctx context.Context, req dto.CreateEventRequest) (*models.EventSummary, error)
}

type eventServiceImpl struct {
	uploadRepo *repositories.UploadLogRepository
	adminRepo  *repositories.AdminRepository
	eventRepo  *repositories.EventRepository
	intn       func(int) int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewEventService creates a new event service
func NewEventService(repos *repositories.Repositories, logger zerolog.Logger) EventService {
	return &eventServiceImpl{
		uploadRepo: repos.UploadLogRepository,
		adminRepo:  repos.AdminRepository,
		eventRepo:  repos.EventRepository,
		intn:       rand.Intn,
		logger:     logger.With().Str("component", "events").Logger(),
		now:        time.Now,
	}
}

// ListUploads returns upload logs newest first with the uploader's name
func (s *eventServiceImpl) ListUploads(ctx context.Context) ([]dto.UploadLogResponse, error) {
	logs, err := s.uploadRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := s.adminRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(logs, func(i, j int) bool {
		a, b := logs[i].TimeUploaded, logs[j].TimeUploaded
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})

	out := make([]dto.UploadLogResponse, 0, len(logs))
	for _, l := range logs {
		name := unknownAdmin
		if admin, ok := admins[l.AdminID]; ok {
			name = admin.DisplayName()
		}
		out = append(out, dto.UploadLogResponse{UploadLog: *l, AdminName: name})
	}
	return out, nil
}

// ListEvents returns every event summary
func (s *eventServiceImpl) ListEvents(ctx context.Context) ([]*models.EventSummary, error) {
	return s.eventRepo.GetAll(ctx)
}

// CreateEvent stores an event summary entered by hand
func (s *eventServiceImpl) CreateEvent(ctx context.Context, req dto.CreateEventRequest) (*models.EventSummary, error) {
	now := s.now().UTC()
	event := &models.EventSummary{
		EventID:         newEventID(req.Year, req.EventTitle, s.intn),
		Title:           strings.TrimSpace(req.EventTitle),
		Location:        strings.TrimSpace(req.Location),
		Year:            req.Year,
		EventDate:       strings.TrimSpace(req.EventDate),
		TotalAttendees:  req.TotalAttendees,
		TotalVolunteers: req.TotalVolunteers,
		TotalSpeakers:   req.TotalSpeakers,
		CreatedAt:       &now,
	}
	if event.EventDate == "" {
		event.EventDate = now.Format(time.DateOnly)
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info().Str("eventId", event.EventID).Msg("Event summary created")
	return event, nil
}
