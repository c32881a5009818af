package models

import "github.com/yigit/alumnidesk/internal/docstore"

// ReferenceStudent is one roster entry of the ingestion allow-list
type ReferenceStudent struct {
	ID        string         `json:"id"`
	StudentID string         `json:"studentId" example:"20190451"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// DecodeReferenceStudent converts a stored roster document
func DecodeReferenceStudent(doc docstore.Document) (*ReferenceStudent, error) {
	r := newReader(docstore.CollectionReferenceStudents, doc)
	rec := &ReferenceStudent{
		ID:        doc.ID,
		StudentID: NormalizeStudentID(r.requiredString(FieldStudentID)),
		Extra:     r.extra(FieldStudentID),
	}
	if r.err != nil {
		return nil, r.err
	}
	return rec, nil
}

// ToDocument returns the stored form
func (s *ReferenceStudent) ToDocument() map[string]any {
	data := make(map[string]any, len(s.Extra)+1)
	for k, v := range s.Extra {
		data[k] = v
	}
	data[FieldStudentID] = s.StudentID
	return data
}
