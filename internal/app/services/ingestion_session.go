package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/kv"
	"github.com/yigit/alumnidesk/internal/pkg/spreadsheet"
)

const (
	sessionKeyPrefix = "ingestion:session:"
	previewRows      = 10
)

// ingestionSession is the stored state of one ingestion workflow
type ingestionSession struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"ownerId"`
	State       dto.IngestionState    `json:"state"`
	FileName    string                `json:"fileName"`
	SheetName   string                `json:"sheetName"`
	StoredPath  string                `json:"storedPath,omitempty"`
	Rows        [][]string            `json:"rows"`
	HeaderRow   *int                  `json:"headerRow,omitempty"`
	Headers     []string              `json:"headers,omitempty"`
	Mapping     map[string]string     `json:"mapping,omitempty"`
	Validation  *dto.ValidationResult `json:"validation,omitempty"`
	CommitJobID string                `json:"commitJobId,omitempty"`
	UploadLogID string                `json:"uploadLogId,omitempty"`
	EventID     string                `json:"eventId,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// cell returns the trimmed value at row/col or "" when out of range
func (s *ingestionSession) cell(row, col int) string {
	sheet := spreadsheet.Sheet{Name: s.SheetName, Rows: s.Rows}
	return sheet.Cell(row, col)
}

func (s *ingestionSession) commitRunning() bool {
	return s.CommitJobID != ""
}

func (s *ingestionSession) toResponse() *dto.IngestionSessionResponse {
	resp := &dto.IngestionSessionResponse{
		SessionID:      s.ID,
		State:          s.State,
		FileName:       s.FileName,
		SheetName:      s.SheetName,
		RowCount:       len(s.Rows),
		HeaderRow:      s.HeaderRow,
		Headers:        s.Headers,
		Mapping:        s.Mapping,
		Validation:     s.Validation,
		RequiredFields: models.RequiredFields,
	}
	n := len(s.Rows)
	if n > previewRows {
		n = previewRows
	}
	resp.Preview = s.Rows[:n]
	if s.Mapping != nil {
		for _, field := range models.RequiredFields {
			if _, ok := s.Mapping[field]; !ok {
				resp.UnmappedFields = append(resp.UnmappedFields, field)
			}
		}
	}
	return resp
}

// sessionStore keeps sessions as JSON in the key-value store
type sessionStore struct {
	kv  kv.Store
	ttl time.Duration
}

func (s *sessionStore) load(ctx context.Context, id string) (*ingestionSession, error) {
	raw, err := s.kv.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		if apperrors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("ingestion session %s: %w", id, apperrors.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("error loading ingestion session: %w", err)
	}
	var sess ingestionSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: ingestion session %s: %v", apperrors.ErrDataIntegrity, id, err)
	}
	return &sess, nil
}

func (s *sessionStore) save(ctx context.Context, sess *ingestionSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("error encoding ingestion session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+sess.ID, raw, s.ttl); err != nil {
		return fmt.Errorf("error saving ingestion session: %w", err)
	}
	return nil
}

func (s *sessionStore) delete(ctx context.Context, id string) error {
	if err := s.kv.Del(ctx, sessionKeyPrefix+id); err != nil {
		return fmt.Errorf("error deleting ingestion session: %w", err)
	}
	return nil
}

// sessionLocks serialises calls on one session without blocking others.
// Entries are dropped once no caller holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until id is free and returns the matching unlock
func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
