package models

import (
	"strings"
	"time"

	"github.com/yigit/alumnidesk/internal/docstore"
)

// Admin document keys
const (
	FieldEmail             = "email"
	FieldAdminFirstName    = "firstName"
	FieldAdminLastName     = "lastName"
	FieldAdminRole         = "role"
	FieldAdminStatus       = "status"
	FieldPasswordHash      = "passwordHash"
	FieldVerificationToken = "verificationToken"
)

// Admin is a staff account of the admin collection
type Admin struct {
	ID                string      `json:"id"`
	Email             string      `json:"email" example:"officer@university.edu"`
	FirstName         string      `json:"firstName" example:"Mehmet"`
	LastName          string      `json:"lastName" example:"Kaya"`
	Role              AdminRole   `json:"role" example:"Alumni Relations Manager"`
	Status            AdminStatus `json:"status" example:"active"`
	PasswordHash      string      `json:"-"`
	VerificationToken string      `json:"-"`
	CreatedAt         *time.Time  `json:"createdAt,omitempty"`
}

// DecodeAdmin converts a stored admin document
func DecodeAdmin(doc docstore.Document) (*Admin, error) {
	r := newReader(docstore.CollectionAdmins, doc)
	admin := &Admin{
		ID:                doc.ID,
		Email:             strings.ToLower(r.requiredString(FieldEmail)),
		FirstName:         r.optString(FieldAdminFirstName),
		LastName:          r.optString(FieldAdminLastName),
		Role:              AdminRole(r.optString(FieldAdminRole)),
		Status:            AdminStatus(r.optString(FieldAdminStatus)),
		PasswordHash:      r.optString(FieldPasswordHash),
		VerificationToken: r.optString(FieldVerificationToken),
		CreatedAt:         r.optTime(FieldCreatedAt),
	}
	if r.err != nil {
		return nil, r.err
	}
	return admin, nil
}

// DisplayName is "First Last", or "Unknown" when both are blank
func (a *Admin) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return "Unknown"
	}
	return name
}

// ToDocument returns the stored form
func (a *Admin) ToDocument() map[string]any {
	data := map[string]any{
		FieldEmail:             strings.ToLower(a.Email),
		FieldAdminFirstName:    a.FirstName,
		FieldAdminLastName:     a.LastName,
		FieldAdminRole:         string(a.Role),
		FieldAdminStatus:       string(a.Status),
		FieldPasswordHash:      a.PasswordHash,
		FieldVerificationToken: a.VerificationToken,
	}
	if a.CreatedAt != nil {
		data[FieldCreatedAt] = *a.CreatedAt
	}
	return data
}
