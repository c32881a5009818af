package models

import (
	"time"

	"github.com/yigit/alumnidesk/internal/docstore"
)

// EventSummary document keys
const (
	FieldEventID         = "eventId"
	FieldEventTitle      = "eventTitle"
	FieldLocation        = "location"
	FieldYear            = "year"
	FieldEventDate       = "eventDate"
	FieldTotalAttendees  = "totalAttendees"
	FieldTotalVolunteers = "totalVolunteers"
	FieldTotalSpeakers   = "totalSpeakers"
)

// EventAlumniLink document keys
const (
	FieldLinkStudentID      = "studentId"
	FieldAttended           = "attended"
	FieldFeedbackScore      = "feedbackScore"
	FieldTimestamp          = "timestamp"
	FieldLinkGraduationYear = "graduationYear"
	FieldLinkMajor          = "major"
)

// EventSummary is one event, created per ingestion run or by hand
type EventSummary struct {
	ID              string     `json:"id"`
	EventID         string     `json:"eventId" example:"EVT2024ALUMNI042"`
	Title           string     `json:"eventTitle" example:"Alumni Homecoming"`
	Location        string     `json:"location" example:"Ankara"`
	Year            int        `json:"year" example:"2024"`
	EventDate       string     `json:"eventDate,omitempty" example:"2024-05-18"`
	TotalAttendees  int        `json:"totalAttendees" example:"120"`
	TotalVolunteers int        `json:"totalVolunteers" example:"12"`
	TotalSpeakers   int        `json:"totalSpeakers" example:"6"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// DecodeEvent converts a stored events document
func DecodeEvent(doc docstore.Document) (*EventSummary, error) {
	r := newReader(docstore.CollectionEvents, doc)
	ev := &EventSummary{
		ID:              doc.ID,
		EventID:         r.requiredString(FieldEventID),
		Title:           r.optString(FieldEventTitle),
		Location:        r.optString(FieldLocation),
		Year:            r.optInt(FieldYear),
		EventDate:       r.optString(FieldEventDate),
		TotalAttendees:  r.optInt(FieldTotalAttendees),
		TotalVolunteers: r.optInt(FieldTotalVolunteers),
		TotalSpeakers:   r.optInt(FieldTotalSpeakers),
		CreatedAt:       r.optTime(FieldCreatedAt),
	}
	if r.err != nil {
		return nil, r.err
	}
	return ev, nil
}

// ToDocument returns the stored form
func (e *EventSummary) ToDocument() map[string]any {
	data := map[string]any{
		FieldEventID:         e.EventID,
		FieldEventTitle:      e.Title,
		FieldLocation:        e.Location,
		FieldYear:            e.Year,
		FieldEventDate:       e.EventDate,
		FieldTotalAttendees:  e.TotalAttendees,
		FieldTotalVolunteers: e.TotalVolunteers,
		FieldTotalSpeakers:   e.TotalSpeakers,
	}
	if e.CreatedAt != nil {
		data[FieldCreatedAt] = *e.CreatedAt
	}
	return data
}

// EventAlumniLink records one alumnus attending one event. EventID is a plain
// string with no referential guarantee.
type EventAlumniLink struct {
	ID             string     `json:"id"`
	EventID        string     `json:"eventId"`
	StudentID      string     `json:"studentId"`
	Attended       bool       `json:"attended"`
	FeedbackScore  int        `json:"feedbackScore,omitempty" example:"4"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	GraduationYear int        `json:"graduationYear,omitempty"`
	Major          string     `json:"major,omitempty"`
}

// DecodeEventAlumniLink converts a stored event_alumni document
func DecodeEventAlumniLink(doc docstore.Document) (*EventAlumniLink, error) {
	r := newReader(docstore.CollectionEventAlumni, doc)
	link := &EventAlumniLink{
		ID:             doc.ID,
		EventID:        r.requiredString(FieldEventID),
		StudentID:      NormalizeStudentID(r.optString(FieldLinkStudentID)),
		Attended:       r.optBool(FieldAttended),
		FeedbackScore:  r.optInt(FieldFeedbackScore),
		Timestamp:      r.optTime(FieldTimestamp),
		GraduationYear: r.optInt(FieldLinkGraduationYear),
		Major:          r.optString(FieldLinkMajor),
	}
	if r.err != nil {
		return nil, r.err
	}
	return link, nil
}

// HasGraduationYear reports whether the snapshot year is already filled in
func (l *EventAlumniLink) HasGraduationYear() bool {
	return l.GraduationYear != 0
}

// ToDocument returns the stored form
func (l *EventAlumniLink) ToDocument() map[string]any {
	data := map[string]any{
		FieldEventID:       l.EventID,
		FieldLinkStudentID: l.StudentID,
		FieldAttended:      l.Attended,
		FieldFeedbackScore: l.FeedbackScore,
	}
	if l.Timestamp != nil {
		data[FieldTimestamp] = *l.Timestamp
	}
	if l.GraduationYear != 0 {
		data[FieldLinkGraduationYear] = l.GraduationYear
	}
	if l.Major != "" {
		data[FieldLinkMajor] = l.Major
	}
	return data
}
