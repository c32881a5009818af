package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/spreadsheet"
)

// RosterService loads the reference-student allow-list
type RosterService interface {
	Import(ctx context.Context, fileName string, content io.Reader) (*dto.RosterImportResult, error)
}

type rosterServiceImpl struct {
	rosterRepo *repositories.ReferenceStudentRepository
	logger     zerolog.Logger
}

// NewRosterService creates a new roster service
func NewRosterService(repos *repositories.Repositories, logger zerolog.Logger) RosterService {
	return &rosterServiceImpl{
		rosterRepo: repos.ReferenceStudentRepository,
		logger:     logger.With().Str("component", "roster").Logger(),
	}
}

// Import reads a sheet whose first row is the header and inserts every
// Student ID not already on the roster or earlier in the file
func (s *rosterServiceImpl) Import(ctx context.Context, fileName string, content io.Reader) (*dto.RosterImportResult, error) {
	sheet, err := spreadsheet.Parse(content, fileName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("%w: roster sheet is empty", apperrors.ErrValidationFailed)
	}

	headers := sheet.Rows[0]
	idCol := -1
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), models.FieldStudentID) {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: roster has no %q column", apperrors.ErrValidationFailed, models.FieldStudentID)
	}

	known, err := s.rosterRepo.StudentIDSet(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.RosterImportResult{}
	for row := 1; row < len(sheet.Rows); row++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		id := models.NormalizeStudentID(sheet.Cell(row, idCol))
		if id == "" {
			continue
		}
		if _, dup := known[id]; dup {
			result.Skipped++
			continue
		}

		student := &models.ReferenceStudent{StudentID: id, Extra: map[string]any{}}
		for col, h := range headers {
			h = strings.TrimSpace(h)
			if col == idCol || h == "" {
				continue
			}
			if v := sheet.Cell(row, col); v != "" {
				student.Extra[h] = v
			}
		}
		if err := s.rosterRepo.Create(ctx, student); err != nil {
			return result, err
		}
		known[id] = struct{}{}
		result.Inserted++
	}

	s.logger.Info().
		Str("file", fileName).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Msg("Roster imported")
	return result, nil
}
