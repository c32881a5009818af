package models

import (
	"time"

	"github.com/yigit/alumnidesk/internal/docstore"
)

// UploadLog document keys
const (
	FieldAdminID       = "adminId"
	FieldFileName      = "fileName"
	FieldStatus        = "status"
	FieldRowsProcessed = "rowsProcessed"
	FieldTimeUploaded  = "timeUploaded"
	FieldStoredPath    = "storedPath"
)

// UploadLog is the audit entry for one ingestion commit. A run that fails
// part-way stays in UploadProcessing.
type UploadLog struct {
	ID            string       `json:"id"`
	AdminID       string       `json:"adminId"`
	FileName      string       `json:"fileName" example:"homecoming_2024.xlsx"`
	Status        UploadStatus `json:"status" example:"Completed"`
	RowsProcessed int          `json:"rowsProcessed" example:"118"`
	TimeUploaded  *time.Time   `json:"timeUploaded,omitempty"`
	EventID       string       `json:"eventId,omitempty"`
	StoredPath    string       `json:"storedPath,omitempty"`
}

// DecodeUploadLog converts a stored file_upload_logs document
func DecodeUploadLog(doc docstore.Document) (*UploadLog, error) {
	r := newReader(docstore.CollectionUploadLogs, doc)
	log := &UploadLog{
		ID:            doc.ID,
		AdminID:       r.optString(FieldAdminID),
		FileName:      r.requiredString(FieldFileName),
		Status:        UploadStatus(r.optString(FieldStatus)),
		RowsProcessed: r.optInt(FieldRowsProcessed),
		TimeUploaded:  r.optTime(FieldTimeUploaded),
		EventID:       r.optString(FieldEventID),
		StoredPath:    r.optString(FieldStoredPath),
	}
	if r.err != nil {
		return nil, r.err
	}
	return log, nil
}

// ToDocument returns the stored form
func (u *UploadLog) ToDocument() map[string]any {
	data := map[string]any{
		FieldAdminID:       u.AdminID,
		FieldFileName:      u.FileName,
		FieldStatus:        string(u.Status),
		FieldRowsProcessed: u.RowsProcessed,
	}
	if u.TimeUploaded != nil {
		data[FieldTimeUploaded] = *u.TimeUploaded
	}
	if u.EventID != "" {
		data[FieldEventID] = u.EventID
	}
	if u.StoredPath != "" {
		data[FieldStoredPath] = u.StoredPath
	}
	return data
}
