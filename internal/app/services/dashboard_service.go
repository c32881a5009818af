package services

import (
	"context"

	"github.com/yigit/alumnidesk/internal/app/analytics"
	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/repositories"
)

// DefaultTopN caps the top-majors and top-companies lists
const DefaultTopN = 10

// DashboardService computes dashboard views from fresh reads of the store
type DashboardService interface {
	Alumni(ctx context.Context, f analytics.AlumniFilter) (*analytics.AlumniDashboard, error)
	AlumniCounts(ctx context.Context, field string) ([]analytics.Count, error)
	AlumniForecast(ctx context.Context, field string) ([]analytics.ForecastPoint, error)
	Events(ctx context.Context, f analytics.EventFilter) (*analytics.EventsDashboard, error)
	Predictions(ctx context.Context) (*analytics.Predictions, error)
}

type dashboardServiceImpl struct {
	alumniRepo *repositories.AlumniRepository
	eventRepo  *repositories.EventRepository
	linkRepo   *repositories.EventAlumniRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repos *repositories.Repositories) DashboardService {
	return &dashboardServiceImpl{
		alumniRepo: repos.AlumniRepository,
		eventRepo:  repos.EventRepository,
		linkRepo:   repos.EventAlumniRepository,
	}
}

func (s *dashboardServiceImpl) Alumni(ctx context.Context, f analytics.AlumniFilter) (*analytics.AlumniDashboard, error) {
	records, err := s.alumni(ctx)
	if err != nil {
		return nil, err
	}
	dash := analytics.BuildAlumniDashboard(records, f, DefaultTopN)
	return &dash, nil
}

// AlumniCounts is countBy over one field, largest first
func (s *dashboardServiceImpl) AlumniCounts(ctx context.Context, field string) ([]analytics.Count, error) {
	records, err := s.alumni(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := analytics.CountAlumniBy(records, field)
	if err != nil {
		return nil, err
	}
	return analytics.ByCount(counts), nil
}

// AlumniForecast projects next year's count per category of field
func (s *dashboardServiceImpl) AlumniForecast(ctx context.Context, field string) ([]analytics.ForecastPoint, error) {
	if field == "" {
		field = models.FieldCompanyName
	}
	records, err := s.alumni(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := analytics.CountAlumniBy(records, field)
	if err != nil {
		return nil, err
	}
	return analytics.Forecast(counts), nil
}

func (s *dashboardServiceImpl) Events(ctx context.Context, f analytics.EventFilter) (*analytics.EventsDashboard, error) {
	events, links, err := s.eventsAndLinks(ctx)
	if err != nil {
		return nil, err
	}
	dash := analytics.BuildEventsDashboard(events, links, f)
	return &dash, nil
}

func (s *dashboardServiceImpl) Predictions(ctx context.Context) (*analytics.Predictions, error) {
	events, links, err := s.eventsAndLinks(ctx)
	if err != nil {
		return nil, err
	}
	p := analytics.BuildPredictions(events, links)
	return &p, nil
}

func (s *dashboardServiceImpl) alumni(ctx context.Context) ([]models.AlumniRecord, error) {
	recs, err := s.alumniRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return values(recs), nil
}

func (s *dashboardServiceImpl) eventsAndLinks(ctx context.Context) ([]models.EventSummary, []models.EventAlumniLink, error) {
	events, err := s.eventRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	links, err := s.linkRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return values(events), values(links), nil
}

// values dereferences a slice of records
func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}
