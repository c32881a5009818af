package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/events"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
)

// RequestService reviews alumni update requests
type RequestService interface {
	List(ctx context.Context, search string) ([]*models.UpdateRequest, error)
	Get(ctx context.Context, id string) (*models.UpdateRequest, error)
	Approve(ctx context.Context, id, reviewerID string) ([]*models.UpdateRequest, error)
	Cancel(ctx context.Context, id, reviewerID string) ([]*models.UpdateRequest, error)
	Submit(ctx context.Context, req dto.SubmitUpdateRequest) (*models.UpdateRequest, error)
}

type requestServiceImpl struct {
	requestRepo *repositories.UpdateRequestRepository
	alumniRepo  *repositories.AlumniRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRequestService creates a new request service. publisher and m may be nil.
func NewRequestService(repos *repositories.Repositories, publisher events.Publisher, m *metrics.Metrics, logger zerolog.Logger) RequestService {
	return &requestServiceImpl{
		requestRepo: repos.UpdateRequestRepository,
		alumniRepo:  repos.AlumniRepository,
		publisher:   publisher,
		metrics:     m,
		logger:      logger.With().Str("component", "requests").Logger(),
		now:         time.Now,
	}
}

// List returns every request, optionally filtered by Student ID or name
func (s *requestServiceImpl) List(ctx context.Context, search string) ([]*models.UpdateRequest, error) {
	all, err := s.requestRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return all, nil
	}

	filtered := make([]*models.UpdateRequest, 0, len(all))
	for _, r := range all {
		for _, v := range []string{r.StudentID, r.FirstName, r.LastName} {
			if strings.Contains(strings.ToLower(v), term) {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered, nil
}

// Get returns one request
func (s *requestServiceImpl) Get(ctx context.Context, id string) (*models.UpdateRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, fmt.Errorf("update request %s: %w", id, apperrors.ErrRequestNotFound)
		}
		return nil, err
	}
	return req, nil
}

// Approve writes the request onto the alumni record, inserting one when the
// Student ID is unknown, then marks the request Approved
func (s *requestServiceImpl) Approve(ctx context.Context, id, reviewerID string) ([]*models.UpdateRequest, error) {
	req, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := approvedFields(req)
	now := s.now().UTC()

	matches, err := s.alumniRepo.FindByStudentID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		fields[models.FieldLastUpdated] = now
		if err := s.alumniRepo.Update(ctx, matches[0].ID, fields); err != nil {
			return nil, err
		}
	} else {
		fields[models.FieldCreatedAt] = now
		if _, err := s.alumniRepo.Create(ctx, fields); err != nil {
			return nil, err
		}
	}

	return s.decide(ctx, req, models.RequestApproved, reviewerID, len(matches) == 0)
}

// Cancel marks the request Cancelled without touching alumni records
func (s *requestServiceImpl) Cancel(ctx context.Context, id, reviewerID string) ([]*models.UpdateRequest, error) {
	req, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, req, models.RequestCancelled, reviewerID, false)
}

// Submit stores a request posted by the external alumni form
func (s *requestServiceImpl) Submit(ctx context.Context, in dto.SubmitUpdateRequest) (*models.UpdateRequest, error) {
	studentID := models.NormalizeStudentID(in.StudentID)
	if studentID == "" {
		return nil, fmt.Errorf("%w: Student ID is required", apperrors.ErrValidationFailed)
	}

	fields := map[string]any{}
	for key, value := range map[string]string{
		models.FieldFirstName:       in.FirstName,
		models.FieldLastName:        in.LastName,
		models.FieldGraduationYear:  in.GraduationYear,
		models.FieldMajor:           in.Major,
		models.FieldCompanyName:     in.CompanyName,
		models.FieldCompanyLocation: in.CompanyLocation,
		models.FieldRole:            in.Role,
		models.FieldStillWorking:    in.StillWorking,
	} {
		if v := strings.TrimSpace(value); v != "" {
			fields[key] = v
		}
	}

	requestType := strings.TrimSpace(in.RequestType)
	if requestType == "" {
		requestType = "Update"
	}
	now := s.now().UTC()
	req := &models.UpdateRequest{
		StudentID:   studentID,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		RequestType: requestType,
		Status:      models.RequestPending,
		SubmittedAt: &now,
		Fields:      fields,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().Str("request", req.ID).Str("studentId", studentID).Msg("Update request submitted")
	return req, nil
}

func (s *requestServiceImpl) pending(ctx context.Context, id string) (*models.UpdateRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("update request %s is %s: %w", id, req.Status, apperrors.ErrRequestAlreadyDecided)
	}
	return req, nil
}

func (s *requestServiceImpl) decide(ctx context.Context, req *models.UpdateRequest, status models.RequestStatus, reviewerID string, created bool) ([]*models.UpdateRequest, error) {
	if err := s.requestRepo.SetStatus(ctx, req.ID, status); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("request", req.ID).
		Str("studentId", req.StudentID).
		Str("status", string(status)).
		Str("reviewer", reviewerID).
		Bool("created", created).
		Msg("Update request decided")

	if s.metrics != nil {
		s.metrics.RequestDecisions.WithLabelValues(string(status)).Inc()
	}
	if s.publisher != nil {
		event := events.New(events.TypeRequestDecided, req.StudentID, map[string]any{
			"requestId": req.ID,
			"studentId": req.StudentID,
			"status":    status,
			"reviewer":  reviewerID,
			"created":   created,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("request", req.ID).Msg("Failed to publish decision event")
		}
	}

	return s.requestRepo.GetAll(ctx)
}

// approvedFields returns every field the request carries except its own
// bookkeeping, with the year and still-working values coerced to their
// stored types
func approvedFields(req *models.UpdateRequest) map[string]any {
	fields := req.AlumniFields()
	for _, key := range []string{models.FieldRequestStat, models.FieldRequestType, models.FieldSubmittedAt} {
		delete(fields, key)
	}
	if v, ok := fields[models.FieldGraduationYear]; ok {
		if year, ok := docstore.AsInt(v); ok {
			fields[models.FieldGraduationYear] = year
		}
	}
	if v, ok := fields[models.FieldStillWorking]; ok {
		if b, ok := docstore.AsBool(v); ok {
			fields[models.FieldStillWorking] = b
		}
	}
	return fields
}
