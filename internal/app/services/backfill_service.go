package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/jobs"
	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/events"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
	"github.com/yigit/alumnidesk/internal/pkg/websocket"
)

// Message types sent on backfill job topics
const (
	MsgBackfillProgress = "backfill.progress"
	MsgBackfillDone     = "backfill.done"
)

const backfillProgressEvery = 50

// BackfillService copies graduation year and major from alumni records onto
// attendance links that lack them
type BackfillService interface {
	Run(ctx context.Context) (*dto.BackfillResult, error)
	Start() (*dto.JobAccepted, error)
}

type backfillServiceImpl struct {
	alumniRepo *repositories.AlumniRepository
	linkRepo   *repositories.EventAlumniRepository
	runner     *jobs.Runner
	notifier   Notifier
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	running    atomic.Bool
}

// NewBackfillService creates a new backfill service. runner is only needed
// for Start; notifier, publisher and m may be nil.
func NewBackfillService(repos *repositories.Repositories, runner *jobs.Runner, notifier Notifier, publisher events.Publisher, m *metrics.Metrics, logger zerolog.Logger) BackfillService {
	return &backfillServiceImpl{
		alumniRepo: repos.AlumniRepository,
		linkRepo:   repos.EventAlumniRepository,
		runner:     runner,
		notifier:   notifier,
		publisher:  publisher,
		metrics:    m,
		logger:     logger.With().Str("component", "backfill").Logger(),
	}
}

// Start runs the backfill as a background job. Only one run at a time.
func (s *backfillServiceImpl) Start() (*dto.JobAccepted, error) {
	if s.runner == nil {
		return nil, fmt.Errorf("backfill: no job runner configured")
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperrors.NewConflictError("a backfill is already running")
	}

	var jobID string
	ready := make(chan struct{})
	jobID = s.runner.Start("backfill.graduation-year", func(ctx context.Context) (any, error) {
		defer s.running.Store(false)
		<-ready
		return s.run(ctx, websocket.JobTopic(jobID))
	})
	close(ready)
	return &dto.JobAccepted{JobID: jobID}, nil
}

// Run executes the backfill on the caller's goroutine
func (s *backfillServiceImpl) Run(ctx context.Context) (*dto.BackfillResult, error) {
	return s.run(ctx, "")
}

// run visits every link once. Cancellation is checked between links and
// also reaches the store calls in flight; completed writes are kept.
func (s *backfillServiceImpl) run(ctx context.Context, topic string) (*dto.BackfillResult, error) {
	started := time.Now()
	result := &dto.BackfillResult{}

	links, err := s.linkRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	cache := make(map[string]*models.AlumniRecord)
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			s.finish(topic, result, started)
			return result, err
		}
		result.Scanned++

		updated, err := s.backfillLink(ctx, link, cache)
		if err != nil {
			if ctx.Err() != nil {
				result.Cancelled = true
				s.finish(topic, result, started)
				return result, ctx.Err()
			}
			return result, err
		}
		if updated {
			result.Updated++
			s.count("updated")
		} else {
			result.Skipped++
			s.count("skipped")
		}

		if topic != "" && s.notifier != nil && result.Scanned%backfillProgressEvery == 0 {
			s.notifier.Publish(topic, MsgBackfillProgress, *result)
		}
	}

	s.finish(topic, result, started)
	return result, nil
}

func (s *backfillServiceImpl) backfillLink(ctx context.Context, link *models.EventAlumniLink, cache map[string]*models.AlumniRecord) (bool, error) {
	if link.StudentID == "" || link.HasGraduationYear() {
		return false, nil
	}

	rec, seen := cache[link.StudentID]
	if !seen {
		matches, err := s.alumniRepo.FindByStudentID(ctx, link.StudentID)
		if err != nil {
			return false, err
		}
		if len(matches) > 0 {
			rec = matches[0]
		}
		cache[link.StudentID] = rec
	}
	// a record without a year would leave the link incomplete on every run
	if rec == nil || rec.GraduationYear == 0 {
		return false, nil
	}

	if err := s.linkRepo.SetSnapshot(ctx, link.ID, rec.GraduationYear, rec.Major); err != nil {
		return false, err
	}
	return true, nil
}

func (s *backfillServiceImpl) finish(topic string, result *dto.BackfillResult, started time.Time) {
	s.logger.Info().
		Int("scanned", result.Scanned).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Bool("cancelled", result.Cancelled).
		Dur("elapsed", time.Since(started)).
		Msg("Graduation year backfill finished")

	if topic != "" && s.notifier != nil {
		s.notifier.Publish(topic, MsgBackfillDone, *result)
	}
	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, events.New(events.TypeBackfillCompleted, "backfill", result)); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish backfill event")
		}
	}
}

func (s *backfillServiceImpl) count(outcome string) {
	if s.metrics != nil {
		s.metrics.BackfillLinksTotal.WithLabelValues(outcome).Inc()
	}
}
