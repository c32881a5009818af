package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/yigit/alumnidesk/internal/docstore"
)

// Timestamp keys written alongside alumni fields
const (
	FieldLinkedURL   = "linkedURL"
	FieldCreatedAt   = "createdAt"
	FieldLastUpdated = "lastUpdated"
)

// AlumniRecord is one document of the alumni collection. At most one record
// per StudentID is intended; the store does not enforce it.
type AlumniRecord struct {
	ID              string         `json:"id" example:"6f1c1f0e-4c1e-4f7b-9d6a-0c2b1d3e4f50"`
	StudentID       string         `json:"studentId" example:"20190451"`
	FirstName       string         `json:"firstName" example:"Ayse"`
	LastName        string         `json:"lastName" example:"Demir"`
	GraduationYear  int            `json:"graduationYear,omitempty" example:"2021"`
	Major           string         `json:"major" example:"Computer Science"`
	CompanyName     string         `json:"companyName" example:"DataWorks"`
	CompanyLocation string         `json:"companyLocation" example:"Istanbul"`
	Role            string         `json:"role" example:"Data Engineer"`
	StillWorking    bool           `json:"stillWorking"`
	LinkedURL       string         `json:"linkedURL,omitempty"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
	LastUpdated     *time.Time     `json:"lastUpdated,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"` // Unmodelled columns, written back untouched
}

// DecodeAlumni converts a stored document into an AlumniRecord
func DecodeAlumni(doc docstore.Document) (*AlumniRecord, error) {
	r := newReader(docstore.CollectionAlumni, doc)
	rec := &AlumniRecord{
		ID:              doc.ID,
		StudentID:       NormalizeStudentID(r.requiredString(FieldStudentID)),
		FirstName:       r.optString(FieldFirstName),
		LastName:        r.optString(FieldLastName),
		GraduationYear:  r.optInt(FieldGraduationYear),
		Major:           r.optString(FieldMajor),
		CompanyName:     r.optString(FieldCompanyName),
		CompanyLocation: r.optString(FieldCompanyLocation),
		Role:            r.optString(FieldRole),
		StillWorking:    r.optBool(FieldStillWorking),
		LinkedURL:       r.optString(FieldLinkedURL),
		CreatedAt:       r.optTime(FieldCreatedAt),
		LastUpdated:     r.optTime(FieldLastUpdated),
	}
	rec.Extra = r.extra(append(RequiredFields, FieldLinkedURL, FieldCreatedAt, FieldLastUpdated)...)
	if r.err != nil {
		return nil, r.err
	}
	return rec, nil
}

// AlumniFromRow builds a record from spreadsheet cells keyed by logical field
func AlumniFromRow(values map[string]string) AlumniRecord {
	rec := AlumniRecord{
		StudentID:       NormalizeStudentID(values[FieldStudentID]),
		FirstName:       strings.TrimSpace(values[FieldFirstName]),
		LastName:        strings.TrimSpace(values[FieldLastName]),
		Major:           strings.TrimSpace(values[FieldMajor]),
		CompanyName:     strings.TrimSpace(values[FieldCompanyName]),
		CompanyLocation: strings.TrimSpace(values[FieldCompanyLocation]),
		Role:            strings.TrimSpace(values[FieldRole]),
	}
	if year, ok := docstore.AsInt(values[FieldGraduationYear]); ok {
		rec.GraduationYear = year
	}
	rec.StillWorking, _ = docstore.AsBool(values[FieldStillWorking])
	return rec
}

// Fields returns the nine alumni fields as document values
func (a *AlumniRecord) Fields() map[string]any {
	fields := map[string]any{
		FieldStudentID:       a.StudentID,
		FieldFirstName:       a.FirstName,
		FieldLastName:        a.LastName,
		FieldMajor:           a.Major,
		FieldCompanyName:     a.CompanyName,
		FieldCompanyLocation: a.CompanyLocation,
		FieldRole:            a.Role,
		FieldStillWorking:    a.StillWorking,
	}
	if a.GraduationYear != 0 {
		fields[FieldGraduationYear] = a.GraduationYear
	} else {
		fields[FieldGraduationYear] = ""
	}
	return fields
}

// ToDocument returns every stored field including extras and timestamps
func (a *AlumniRecord) ToDocument() map[string]any {
	data := make(map[string]any, len(a.Extra)+12)
	for k, v := range a.Extra {
		data[k] = v
	}
	for k, v := range a.Fields() {
		data[k] = v
	}
	if a.LinkedURL != "" {
		data[FieldLinkedURL] = a.LinkedURL
	}
	if a.CreatedAt != nil {
		data[FieldCreatedAt] = *a.CreatedAt
	}
	if a.LastUpdated != nil {
		data[FieldLastUpdated] = *a.LastUpdated
	}
	return data
}

// FullName joins first and last name
func (a *AlumniRecord) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NormalizeStudentID trims the id and drops a trailing ".0" left by numeric cells
func NormalizeStudentID(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasSuffix(s, ".0") {
		if i, ok := docstore.AsInt(s); ok {
			return strconv.Itoa(i)
		}
	}
	return s
}
