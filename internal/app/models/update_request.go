package models

import (
	"time"

	"github.com/yigit/alumnidesk/internal/docstore"
)

// UpdateRequest document keys beyond the alumni fields
const (
	FieldRequestType = "Request Type"
	FieldRequestStat = "Status"
	FieldSubmittedAt = "submittedAt"
)

// UpdateRequest is a change submitted through the external alumni form.
// Fields holds every submitted alumni field exactly as received.
type UpdateRequest struct {
	ID          string         `json:"id"`
	StudentID   string         `json:"studentId" example:"20190451"`
	FirstName   string         `json:"firstName" example:"Ayse"`
	LastName    string         `json:"lastName" example:"Demir"`
	RequestType string         `json:"requestType,omitempty" example:"Update"`
	Status      RequestStatus  `json:"status" example:"Pending"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// DecodeUpdateRequest converts a stored Alumni_Form_Requests document.
// A missing Status reads as Pending.
func DecodeUpdateRequest(doc docstore.Document) (*UpdateRequest, error) {
	r := newReader(docstore.CollectionUpdateRequests, doc)
	req := &UpdateRequest{
		ID:          doc.ID,
		StudentID:   NormalizeStudentID(r.requiredString(FieldStudentID)),
		FirstName:   r.optString(FieldFirstName),
		LastName:    r.optString(FieldLastName),
		RequestType: r.optString(FieldRequestType),
		Status:      RequestStatus(r.optString(FieldRequestStat)),
		SubmittedAt: r.optTime(FieldSubmittedAt),
		Fields:      r.extra(FieldRequestType, FieldRequestStat, FieldSubmittedAt),
	}
	if r.err != nil {
		return nil, r.err
	}
	if req.Status == "" {
		req.Status = RequestPending
	}
	if req.Fields == nil {
		req.Fields = map[string]any{}
	}
	return req, nil
}

// AlumniFields returns what approval writes onto the alumni record: every
// submitted field, with the Student ID in canonical form.
func (u *UpdateRequest) AlumniFields() map[string]any {
	out := make(map[string]any, len(u.Fields)+1)
	for k, v := range u.Fields {
		out[k] = v
	}
	out[FieldStudentID] = u.StudentID
	return out
}

// ToDocument returns the stored form
func (u *UpdateRequest) ToDocument() map[string]any {
	data := u.AlumniFields()
	if u.FirstName != "" {
		data[FieldFirstName] = u.FirstName
	}
	if u.LastName != "" {
		data[FieldLastName] = u.LastName
	}
	if u.RequestType != "" {
		data[FieldRequestType] = u.RequestType
	}
	data[FieldRequestStat] = string(u.Status)
	if u.SubmittedAt != nil {
		data[FieldSubmittedAt] = *u.SubmittedAt
	}
	return data
}
