package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

func TestDecodeAlumni_AcceptsBackendShapes(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := docstore.Document{ID: "a1", Data: map[string]any{
		FieldStudentID:      float64(20190451),
		FieldFirstName:      "Ayse",
		FieldGraduationYear: "2021",
		FieldStillWorking:   "Yes",
		FieldCreatedAt:      created.Format(time.RFC3339),
		"Phone":             "555",
	}}

	rec, err := DecodeAlumni(doc)
	require.NoError(t, err)
	assert.Equal(t, "20190451", rec.StudentID)
	assert.Equal(t, 2021, rec.GraduationYear)
	assert.True(t, rec.StillWorking)
	require.NotNil(t, rec.CreatedAt)
	assert.True(t, created.Equal(*rec.CreatedAt))
	assert.Equal(t, map[string]any{"Phone": "555"}, rec.Extra)
}

func TestDecodeAlumni_MissingStudentIDIsIntegrityError(t *testing.T) {
	_, err := DecodeAlumni(docstore.Document{ID: "a2", Data: map[string]any{FieldFirstName: "X"}})
	assert.ErrorIs(t, err, apperrors.ErrDataIntegrity)
}

func TestDecodeAlumni_StructuredYearIsIntegrityError(t *testing.T) {
	_, err := DecodeAlumni(docstore.Document{ID: "a3", Data: map[string]any{
		FieldStudentID:      "1",
		FieldGraduationYear: map[string]any{"y": 1},
	}})
	assert.ErrorIs(t, err, apperrors.ErrDataIntegrity)
}

func TestAlumniFromRow(t *testing.T) {
	rec := AlumniFromRow(map[string]string{
		FieldStudentID:      " 2021001.0 ",
		FieldFirstName:      "Can",
		FieldGraduationYear: "2023",
		FieldStillWorking:   "no",
	})
	assert.Equal(t, "2021001", rec.StudentID)
	assert.Equal(t, 2023, rec.GraduationYear)
	assert.False(t, rec.StillWorking)

	doc := rec.ToDocument()
	assert.Equal(t, 2023, doc[FieldGraduationYear])
	assert.NotContains(t, doc, FieldCreatedAt)
}

func TestDecodeUpdateRequest_DefaultsToPending(t *testing.T) {
	req, err := DecodeUpdateRequest(docstore.Document{ID: "r1", Data: map[string]any{
		FieldStudentID:   "77",
		FieldCompanyName: "Acme",
		FieldRequestType: "Update",
	}})
	require.NoError(t, err)
	assert.Equal(t, RequestPending, req.Status)

	fields := req.AlumniFields()
	assert.Equal(t, "Acme", fields[FieldCompanyName])
	assert.Equal(t, "77", fields[FieldStudentID])
	assert.NotContains(t, fields, FieldRequestType)
	assert.NotContains(t, fields, FieldRequestStat)
}

func TestEventAlumniLink_HasGraduationYear(t *testing.T) {
	link, err := DecodeEventAlumniLink(docstore.Document{ID: "l1", Data: map[string]any{
		FieldEventID:            "EVT1",
		FieldLinkStudentID:      "9",
		FieldLinkGraduationYear: "",
	}})
	require.NoError(t, err)
	assert.False(t, link.HasGraduationYear())

	link.GraduationYear = 2020
	assert.True(t, link.HasGraduationYear())
}

func TestAdmin_DisplayName(t *testing.T) {
	assert.Equal(t, "Unknown", (&Admin{}).DisplayName())
	assert.Equal(t, "Ada Lovelace", (&Admin{FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
}
