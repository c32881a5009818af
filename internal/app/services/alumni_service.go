package services

import (
	"context"
	"io"
	"strings"

	"github.com/yigit/alumnidesk/internal/app/analytics"
	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/pkg/helpers"
	"github.com/yigit/alumnidesk/internal/pkg/spreadsheet"
)

// ExportSheetName is the worksheet name of alumni exports
const ExportSheetName = "AlumniData"

// AlumniService browses and exports alumni records
type AlumniService interface {
	Search(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse, error)
	Export(ctx context.Context, search string, w io.Writer) (int, error)
}

type alumniServiceImpl struct {
	alumniRepo *repositories.AlumniRepository
}

// NewAlumniService creates a new alumni service
func NewAlumniService(repos *repositories.Repositories) AlumniService {
	return &alumniServiceImpl{alumniRepo: repos.AlumniRepository}
}

// Search returns one page of the records matching search
func (s *alumniServiceImpl) Search(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse, error) {
	matches, err := s.matching(ctx, search)
	if err != nil {
		return nil, err
	}
	items, info := helpers.Paginate(matches, page, pageSize)
	return &dto.PaginatedResponse{Items: items, Pagination: info}, nil
}

// Export writes the matching records as a single-sheet workbook and returns
// the number of rows written
func (s *alumniServiceImpl) Export(ctx context.Context, search string, w io.Writer) (int, error) {
	matches, err := s.matching(ctx, search)
	if err != nil {
		return 0, err
	}

	rows := make([][]any, 0, len(matches))
	for _, rec := range matches {
		row := make([]any, 0, len(models.RequiredFields))
		for _, field := range models.RequiredFields {
			v, _ := analytics.AlumniFieldValue(*rec, field)
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := spreadsheet.WriteWorkbook(w, ExportSheetName, models.RequiredFields, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// matching keeps records where any field contains search, case-insensitively
func (s *alumniServiceImpl) matching(ctx context.Context, search string) ([]*models.AlumniRecord, error) {
	all, err := s.alumniRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return all, nil
	}

	out := make([]*models.AlumniRecord, 0, len(all))
	for _, rec := range all {
		if recordContains(rec, term) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func recordContains(rec *models.AlumniRecord, term string) bool {
	for _, field := range models.RequiredFields {
		v, _ := analytics.AlumniFieldValue(*rec, field)
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	for _, v := range rec.Extra {
		if text, ok := v.(string); ok && strings.Contains(strings.ToLower(text), term) {
			return true
		}
	}
	return false
}
