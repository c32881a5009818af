package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/jobs"
	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/events"
	"github.com/yigit/alumnidesk/internal/pkg/filestorage"
	"github.com/yigit/alumnidesk/internal/pkg/kv"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
	"github.com/yigit/alumnidesk/internal/pkg/spreadsheet"
	"github.com/yigit/alumnidesk/internal/pkg/websocket"
)

// Progress message types sent on ingestion topics
const (
	MsgCommitProgress  = "ingestion.progress"
	MsgCommitCompleted = "ingestion.completed"
	MsgCommitFailed    = "ingestion.failed"
)

// placeholder job id held by a session while its commit is being set up or
// runs inline
const pendingCommitJob = "pending"

// IngestionService defines the spreadsheet ingestion workflow
type IngestionService interface {
	Load(ctx context.Context, ownerID, fileName string, content io.Reader) (*dto.IngestionSessionResponse, error)
	Get(ctx context.Context, ownerID, sessionID string) (*dto.IngestionSessionResponse, error)
	SelectHeader(ctx context.Context, ownerID, sessionID string, rowIndex int) (*dto.IngestionSessionResponse, error)
	MapColumns(ctx context.Context, ownerID, sessionID string, mapping map[string]string) (*dto.IngestionSessionResponse, error)
	Validate(ctx context.Context, ownerID, sessionID string) (*dto.ValidationResult, error)
	Commit(ctx context.Context, ownerID, sessionID string, req dto.CommitRequest) (*dto.CommitResult, error)
	StartCommit(ctx context.Context, ownerID, sessionID string, req dto.CommitRequest) (*dto.JobAccepted, error)
	Reset(ctx context.Context, ownerID, sessionID string) error
}

// Notifier receives progress messages. *websocket.Hub implements it.
type Notifier interface {
	Publish(topic, msgType string, payload any)
}

// IngestionOptions tunes the workflow
type IngestionOptions struct {
	SessionTTL     time.Duration
	SpeakerRatio   float64
	VolunteerRatio float64
	LinkedURLBase  string
	MaxUploadBytes int64
}

// IngestionDeps groups the collaborators of the ingestion service
type IngestionDeps struct {
	Repos     *repositories.Repositories
	Sessions  kv.Store
	Files     filestorage.FileStorage // optional
	Runner    *jobs.Runner            // required by StartCommit only
	Notifier  Notifier                // optional
	Publisher events.Publisher        // optional
	Metrics   *metrics.Metrics        // optional
}

type ingestionServiceImpl struct {
	repos     *repositories.Repositories
	sessions  *sessionStore
	files     filestorage.FileStorage
	runner    *jobs.Runner
	notifier  Notifier
	publisher events.Publisher
	metrics   *metrics.Metrics
	opts      IngestionOptions
	logger    zerolog.Logger

	locks sessionLocks
	now   func() time.Time
	intn  func(n int) int
	newID func() string
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(deps IngestionDeps, opts IngestionOptions, logger zerolog.Logger) IngestionService {
	return newIngestionService(deps, opts, logger)
}

func newIngestionService(deps IngestionDeps, opts IngestionOptions, logger zerolog.Logger) *ingestionServiceImpl {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	return &ingestionServiceImpl{
		repos:     deps.Repos,
		sessions:  &sessionStore{kv: deps.Sessions, ttl: opts.SessionTTL},
		files:     deps.Files,
		runner:    deps.Runner,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		opts:      opts,
		logger:    logger.With().Str("component", "ingestion").Logger(),
		now:       time.Now,
		intn:      rand.Intn,
		newID:     uuid.NewString,
	}
}

// Load parses the uploaded spreadsheet and opens a session in FileLoaded
func (s *ingestionServiceImpl) Load(ctx context.Context, ownerID, fileName string, content io.Reader) (*dto.IngestionSessionResponse, error) {
	data, err := s.readUpload(content)
	if err != nil {
		return nil, err
	}

	sheet, err := spreadsheet.Parse(bytes.NewReader(data), fileName)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", fileName).Msg("Rejected unreadable spreadsheet")
		return nil, err
	}

	sess := &ingestionSession{
		ID:        s.newID(),
		OwnerID:   ownerID,
		State:     dto.StateFileLoaded,
		FileName:  fileName,
		SheetName: sheet.Name,
		Rows:      sheet.Rows,
		CreatedAt: s.now().UTC(),
	}

	if s.files != nil {
		stored, err := s.files.Save("uploads", fileName, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("error storing uploaded file: %w", err)
		}
		sess.StoredPath = stored
	}

	if err := s.sessions.save(ctx, sess); err != nil {
		s.discardFile(sess.StoredPath)
		return nil, err
	}

	s.logger.Info().
		Str("session", sess.ID).
		Str("owner", ownerID).
		Str("file", fileName).
		Int("rows", len(sheet.Rows)).
		Msg("Spreadsheet loaded")
	return sess.toResponse(), nil
}

func (s *ingestionServiceImpl) readUpload(content io.Reader) ([]byte, error) {
	if s.opts.MaxUploadBytes <= 0 {
		return io.ReadAll(content)
	}
	data, err := io.ReadAll(io.LimitReader(content, s.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading upload: %w", err)
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", apperrors.ErrValidationFailed, s.opts.MaxUploadBytes)
	}
	return data, nil
}

// Get returns the current state of a session
func (s *ingestionServiceImpl) Get(ctx context.Context, ownerID, sessionID string) (*dto.IngestionSessionResponse, error) {
	sess, err := s.owned(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.toResponse(), nil
}

// SelectHeader adopts a row as the header list. Choosing again clears the
// mapping and any validation result.
func (s *ingestionServiceImpl) SelectHeader(ctx context.Context, ownerID, sessionID string, rowIndex int) (*dto.IngestionSessionResponse, error) {
	defer s.locks.lock(sessionID)()

	sess, err := s.editable(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if rowIndex < 0 || rowIndex >= len(sess.Rows) {
		return nil, fmt.Errorf("%w: header row %d is outside the sheet (0-%d)", apperrors.ErrValidationFailed, rowIndex, len(sess.Rows)-1)
	}

	headers := make([]string, len(sess.Rows[rowIndex]))
	for col := range headers {
		headers[col] = sess.cell(rowIndex, col)
	}

	idx := rowIndex
	sess.HeaderRow = &idx
	sess.Headers = headers
	sess.Mapping = nil
	sess.Validation = nil
	sess.State = dto.StateHeaderRowSelected

	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.toResponse(), nil
}

// MapColumns records which header feeds each logical field
func (s *ingestionServiceImpl) MapColumns(ctx context.Context, ownerID, sessionID string, mapping map[string]string) (*dto.IngestionSessionResponse, error) {
	defer s.locks.lock(sessionID)()

	sess, err := s.editable(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.HeaderRow == nil {
		return nil, fmt.Errorf("%w: select a header row before mapping columns", apperrors.ErrInvalidState)
	}

	known := make(map[string]struct{}, len(sess.Headers))
	for _, h := range sess.Headers {
		if h != "" {
			known[h] = struct{}{}
		}
	}

	var violations []dto.FieldViolation
	clean := make(map[string]string, len(mapping))
	for field, header := range mapping {
		header = strings.TrimSpace(header)
		switch {
		case !models.IsRequiredField(field):
			violations = append(violations, dto.FieldViolation{Field: field, Message: "Unknown field"})
		case header == "":
			// treated as unmapped
		default:
			if _, ok := known[header]; !ok {
				violations = append(violations, dto.FieldViolation{Field: field, Message: fmt.Sprintf("Header %q is not in the selected header row", header)})
				continue
			}
			clean[field] = header
		}
	}
	if _, ok := clean[models.FieldStudentID]; !ok {
		violations = append(violations, dto.FieldViolation{Field: models.FieldStudentID, Message: "Student ID must be mapped"})
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("column mapping rejected").WithDetails(map[string]interface{}{"violations": violations})
	}

	sess.Mapping = clean
	sess.Validation = nil
	sess.State = dto.StateColumnsMapped

	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.toResponse(), nil
}

// Validate splits the allow-listed rows into inserts and updates. The
// allow-list and the existing alumni ids are each read once.
func (s *ingestionServiceImpl) Validate(ctx context.Context, ownerID, sessionID string) (*dto.ValidationResult, error) {
	defer s.locks.lock(sessionID)()

	sess, err := s.editable(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != dto.StateColumnsMapped && sess.State != dto.StateValidated {
		return nil, fmt.Errorf("%w: map columns before validating", apperrors.ErrInvalidState)
	}

	allowed, err := s.repos.ReferenceStudentRepository.StudentIDSet(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.repos.AlumniRepository.StudentIDSet(ctx)
	if err != nil {
		return nil, err
	}

	result := classifyRows(sess, allowed, existing)
	sess.Validation = result
	sess.State = dto.StateValidated

	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session", sess.ID).
		Int("total", result.TotalRows).
		Int("toAdd", len(result.ToAdd)).
		Int("toUpdate", len(result.ToUpdate)).
		Int("rejected", result.Rejected).
		Msg("Spreadsheet validated")
	return result, nil
}

// classifyRows reads every row under the header through the mapping. Each
// field reads the column of the first header equal to its mapped name.
func classifyRows(sess *ingestionSession, allowed, existing map[string]struct{}) *dto.ValidationResult {
	columns := make(map[string]int, len(sess.Mapping))
	for field, header := range sess.Mapping {
		for col, h := range sess.Headers {
			if h == header {
				columns[field] = col
				break
			}
		}
	}

	result := &dto.ValidationResult{
		ToAdd:    []map[string]string{},
		ToUpdate: []map[string]string{},
	}
	for row := *sess.HeaderRow + 1; row < len(sess.Rows); row++ {
		record := make(map[string]string, len(models.RequiredFields))
		blank := true
		for _, field := range models.RequiredFields {
			value := ""
			if col, ok := columns[field]; ok {
				value = sess.cell(row, col)
			}
			if value != "" {
				blank = false
			}
			record[field] = value
		}
		if blank {
			continue
		}
		result.TotalRows++

		id := models.NormalizeStudentID(record[models.FieldStudentID])
		record[models.FieldStudentID] = id
		if _, ok := allowed[id]; !ok || id == "" {
			result.Rejected++
			continue
		}
		if _, ok := existing[id]; ok {
			result.ToUpdate = append(result.ToUpdate, record)
		} else {
			result.ToAdd = append(result.ToAdd, record)
		}
	}
	return result
}

// commitPlan is everything a commit run needs, captured while the session is locked
type commitPlan struct {
	sessionID string
	ownerID   string
	fileName  string
	rows      []map[string]string
	req       dto.CommitRequest
	uploadLog *models.UploadLog
	eventID   string
}

// Commit runs the commit on the caller's goroutine
func (s *ingestionServiceImpl) Commit(ctx context.Context, ownerID, sessionID string, req dto.CommitRequest) (*dto.CommitResult, error) {
	unlock := s.locks.lock(sessionID)
	plan, err := s.prepareCommit(ctx, ownerID, sessionID, req)
	unlock()
	if err != nil {
		return nil, err
	}
	return s.runCommit(ctx, plan)
}

// StartCommit creates the upload log and hands the row writes to the job runner
func (s *ingestionServiceImpl) StartCommit(ctx context.Context, ownerID, sessionID string, req dto.CommitRequest) (*dto.JobAccepted, error) {
	if s.runner == nil {
		return nil, fmt.Errorf("ingestion commit: no job runner configured")
	}

	defer s.locks.lock(sessionID)()

	// the job id is only known after Start; the job cannot touch the session
	// before this function releases the lock
	plan, err := s.prepareCommit(ctx, ownerID, sessionID, req)
	if err != nil {
		return nil, err
	}

	jobID := s.runner.Start("ingestion.commit", func(jobCtx context.Context) (any, error) {
		return s.runCommit(jobCtx, plan)
	})

	sess, err := s.sessions.load(ctx, sessionID)
	if err == nil {
		sess.CommitJobID = jobID
		err = s.sessions.save(ctx, sess)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Str("job", jobID).Msg("Could not record commit job on session")
	}

	return &dto.JobAccepted{JobID: jobID, UploadLogID: plan.uploadLog.ID, EventID: plan.eventID}, nil
}

// prepareCommit must run with the session lock held
func (s *ingestionServiceImpl) prepareCommit(ctx context.Context, ownerID, sessionID string, req dto.CommitRequest) (*commitPlan, error) {
	sess, err := s.editable(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != dto.StateValidated || sess.Validation == nil {
		return nil, fmt.Errorf("%w: validate the spreadsheet before committing", apperrors.ErrInvalidState)
	}
	if strings.TrimSpace(req.EventTitle) == "" || strings.TrimSpace(req.Location) == "" || req.Year <= 0 {
		return nil, fmt.Errorf("%w: event title, year and location are required", apperrors.ErrValidationFailed)
	}

	now := s.now().UTC()
	uploadLog := &models.UploadLog{
		AdminID:      ownerID,
		FileName:     sess.FileName,
		Status:       models.UploadProcessing,
		TimeUploaded: &now,
		StoredPath:   sess.StoredPath,
	}
	if err := s.repos.UploadLogRepository.Create(ctx, uploadLog); err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(sess.Validation.ToAdd)+len(sess.Validation.ToUpdate))
	rows = append(rows, sess.Validation.ToAdd...)
	rows = append(rows, sess.Validation.ToUpdate...)

	plan := &commitPlan{
		sessionID: sess.ID,
		ownerID:   ownerID,
		fileName:  sess.FileName,
		rows:      rows,
		req:       req,
		uploadLog: uploadLog,
		eventID:   s.generateEventID(req.Year, req.EventTitle),
	}

	sess.CommitJobID = pendingCommitJob
	sess.UploadLogID = uploadLog.ID
	sess.EventID = plan.eventID
	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session", sess.ID).
		Str("uploadLog", uploadLog.ID).
		Str("event", plan.eventID).
		Int("rows", len(rows)).
		Msg("Ingestion commit started")
	return plan, nil
}

func (s *ingestionServiceImpl) generateEventID(year int, title string) string {
	return newEventID(year, title, s.intn)
}

// newEventID builds EVT{year}{title prefix}{3 random digits}
func newEventID(year int, title string, intn func(int) int) string {
	var b strings.Builder
	for _, r := range title {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	prefix := []rune(strings.ToUpper(b.String()))
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("EVT%d%s%03d", year, string(prefix), intn(1000))
}

// runCommit writes the rows one by one, then the event summary, then closes
// the upload log. A failure leaves the upload log in Processing.
func (s *ingestionServiceImpl) runCommit(ctx context.Context, plan *commitPlan) (*dto.CommitResult, error) {
	started := s.now()
	topic := websocket.IngestionTopic(plan.sessionID)
	total := len(plan.rows)
	result := &dto.CommitResult{UploadLogID: plan.uploadLog.ID, EventID: plan.eventID}

	for _, row := range plan.rows {
		if err := ctx.Err(); err != nil {
			return nil, s.failCommit(plan, result, err)
		}
		inserted, err := s.commitRow(ctx, plan.eventID, row)
		if err != nil {
			return nil, s.failCommit(plan, result, err)
		}
		if inserted {
			result.Inserted++
			s.countRow("insert")
		} else {
			result.Updated++
			s.countRow("update")
		}
		result.RowsProcessed++
		s.notify(topic, MsgCommitProgress, dto.CommitProgress{
			SessionID: plan.sessionID,
			EventID:   plan.eventID,
			Processed: result.RowsProcessed,
			Total:     total,
		})
	}

	now := s.now().UTC()
	eventDate := strings.TrimSpace(plan.req.EventDate)
	if eventDate == "" {
		eventDate = now.Format(time.DateOnly)
	}
	summary := &models.EventSummary{
		EventID:         plan.eventID,
		Title:           strings.TrimSpace(plan.req.EventTitle),
		Location:        strings.TrimSpace(plan.req.Location),
		Year:            plan.req.Year,
		EventDate:       eventDate,
		TotalAttendees:  total,
		TotalVolunteers: int(math.Floor(s.opts.VolunteerRatio * float64(total))),
		TotalSpeakers:   int(math.Floor(s.opts.SpeakerRatio * float64(total))),
		CreatedAt:       &now,
	}
	if err := s.repos.EventRepository.Create(ctx, summary); err != nil {
		return nil, s.failCommit(plan, result, err)
	}
	if err := s.repos.UploadLogRepository.MarkCompleted(ctx, plan.uploadLog.ID, plan.eventID, total); err != nil {
		return nil, s.failCommit(plan, result, err)
	}

	s.finishSession(plan.sessionID, func(sess *ingestionSession) {
		sess.State = dto.StateCommitted
		sess.CommitJobID = ""
	})

	if s.metrics != nil {
		s.metrics.IngestionCommits.WithLabelValues("completed").Inc()
		s.metrics.IngestionDuration.Observe(s.now().Sub(started).Seconds())
	}
	s.notify(topic, MsgCommitCompleted, dto.CommitProgress{
		SessionID: plan.sessionID,
		EventID:   plan.eventID,
		Processed: result.RowsProcessed,
		Total:     total,
		Done:      true,
	})
	s.publish(events.New(events.TypeUploadCompleted, plan.uploadLog.ID, result))

	s.logger.Info().
		Str("session", plan.sessionID).
		Str("uploadLog", plan.uploadLog.ID).
		Str("event", plan.eventID).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Msg("Ingestion commit completed")
	return result, nil
}

// commitRow upserts one alumni record by Student ID and links it to the event
func (s *ingestionServiceImpl) commitRow(ctx context.Context, eventID string, row map[string]string) (bool, error) {
	rec := models.AlumniFromRow(row)
	now := s.now().UTC()

	fields := rec.Fields()
	fields[models.FieldLinkedURL] = s.linkedURL(rec.StudentID)

	matches, err := s.repos.AlumniRepository.FindByStudentID(ctx, rec.StudentID)
	if err != nil {
		return false, err
	}

	inserted := len(matches) == 0
	if inserted {
		fields[models.FieldCreatedAt] = now
		if _, err := s.repos.AlumniRepository.Create(ctx, fields); err != nil {
			return false, err
		}
	} else {
		fields[models.FieldLastUpdated] = now
		if err := s.repos.AlumniRepository.Update(ctx, matches[0].ID, fields); err != nil {
			return false, err
		}
	}

	link := &models.EventAlumniLink{
		EventID:       eventID,
		StudentID:     rec.StudentID,
		Attended:      true,
		FeedbackScore: s.intn(5) + 1,
		Timestamp:     &now,
	}
	if err := s.repos.EventAlumniRepository.Create(ctx, link); err != nil {
		return false, err
	}
	return inserted, nil
}

func (s *ingestionServiceImpl) linkedURL(studentID string) string {
	return strings.TrimRight(s.opts.LinkedURLBase, "/") + "/" + studentID
}

func (s *ingestionServiceImpl) failCommit(plan *commitPlan, result *dto.CommitResult, cause error) error {
	s.logger.Error().
		Err(cause).
		Str("session", plan.sessionID).
		Str("uploadLog", plan.uploadLog.ID).
		Int("processed", result.RowsProcessed).
		Msg("Ingestion commit failed, upload log left in Processing")

	// the session stays Validated so the commit can be retried
	s.finishSession(plan.sessionID, func(sess *ingestionSession) {
		sess.CommitJobID = ""
	})

	if s.metrics != nil {
		s.metrics.IngestionCommits.WithLabelValues("failed").Inc()
	}
	s.notify(websocket.IngestionTopic(plan.sessionID), MsgCommitFailed, dto.CommitProgress{
		SessionID: plan.sessionID,
		EventID:   plan.eventID,
		Processed: result.RowsProcessed,
		Total:     len(plan.rows),
		Done:      true,
		Error:     cause.Error(),
	})
	s.publish(events.New(events.TypeUploadFailed, plan.uploadLog.ID, map[string]any{
		"uploadLogId":   plan.uploadLog.ID,
		"eventId":       plan.eventID,
		"rowsProcessed": result.RowsProcessed,
		"error":         cause.Error(),
	}))
	return fmt.Errorf("ingestion commit after %d of %d rows: %w", result.RowsProcessed, len(plan.rows), cause)
}

// finishSession applies fn to the stored session on a context of its own, so
// cancellation of the commit does not prevent the bookkeeping. A session that
// was reset in the meantime is left alone.
func (s *ingestionServiceImpl) finishSession(sessionID string, fn func(*ingestionSession)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	defer s.locks.lock(sessionID)()

	sess, err := s.sessions.load(ctx, sessionID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrSessionNotFound) {
			s.logger.Warn().Err(err).Str("session", sessionID).Msg("Could not update session after commit")
		}
		return
	}
	fn(sess)
	if err := s.sessions.save(ctx, sess); err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Msg("Could not update session after commit")
	}
}

// Reset deletes the session. The retained file is removed unless an upload
// log already points at it.
func (s *ingestionServiceImpl) Reset(ctx context.Context, ownerID, sessionID string) error {
	defer s.locks.lock(sessionID)()

	sess, err := s.owned(ctx, ownerID, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.delete(ctx, sessionID); err != nil {
		return err
	}
	if sess.UploadLogID == "" {
		s.discardFile(sess.StoredPath)
	}
	if hub, ok := s.notifier.(*websocket.Hub); ok && !sess.commitRunning() {
		hub.Forget(websocket.IngestionTopic(sessionID))
	}

	s.logger.Info().Str("session", sessionID).Str("state", string(sess.State)).Msg("Ingestion session reset")
	return nil
}

// IngestionTopicAuthorizer lets only the owning admin follow an ingestion
// topic. Job topics stay open to every authenticated caller, like the job
// status endpoint.
func IngestionTopicAuthorizer(svc IngestionService) websocket.TopicAuthorizer {
	return func(ctx context.Context, adminID, topic string) error {
		sessionID, ok := strings.CutPrefix(topic, websocket.TopicIngestionPrefix)
		if !ok {
			return nil
		}
		_, err := svc.Get(ctx, adminID, sessionID)
		return err
	}
}

// owned loads a session and hides it from anyone but its owner
func (s *ingestionServiceImpl) owned(ctx context.Context, ownerID, sessionID string) (*ingestionSession, error) {
	sess, err := s.sessions.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != ownerID {
		return nil, fmt.Errorf("ingestion session %s: %w", sessionID, apperrors.ErrSessionNotFound)
	}
	return sess, nil
}

// editable loads a session that can still move through the pre-commit steps
func (s *ingestionServiceImpl) editable(ctx context.Context, ownerID, sessionID string) (*ingestionSession, error) {
	sess, err := s.owned(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case sess.State == dto.StateCommitted:
		return nil, fmt.Errorf("%w: session already committed", apperrors.ErrInvalidState)
	case sess.commitRunning():
		return nil, fmt.Errorf("%w: a commit is in progress", apperrors.ErrInvalidState)
	}
	return sess, nil
}

func (s *ingestionServiceImpl) discardFile(path string) {
	if s.files == nil || path == "" {
		return
	}
	if err := s.files.DeleteFile(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Could not remove retained upload")
	}
}

func (s *ingestionServiceImpl) countRow(action string) {
	if s.metrics != nil {
		s.metrics.IngestionRowsTotal.WithLabelValues(action).Inc()
	}
}

func (s *ingestionServiceImpl) notify(topic, msgType string, payload any) {
	if s.notifier != nil {
		s.notifier.Publish(topic, msgType, payload)
	}
}

func (s *ingestionServiceImpl) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", event.Type).Msg("Failed to publish domain event")
	}
}
