package dto

import "github.com/yigit/alumnidesk/internal/app/models"

// RegisterRequest creates a staff account
type RegisterRequest struct {
	Email     string           `json:"email" binding:"required,email" example:"officer@university.edu"`
	Password  string           `json:"password" binding:"required,min=8" example:"S3curePass!"`
	FirstName string           `json:"firstName" binding:"required" example:"Mehmet"`
	LastName  string           `json:"lastName" binding:"required" example:"Kaya"`
	Role      models.AdminRole `json:"role" binding:"required,adminrole" example:"Alumni Relations Manager"`
}

// RegisterResponse is returned after registration
type RegisterResponse struct {
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
	Message string `json:"message" example:"Registration successful. Please check your email to verify your account."`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
	Anonymous   bool   `json:"anonymous"`
}

// SessionResponse describes the caller behind a token
type SessionResponse struct {
	Authenticated bool             `json:"authenticated" example:"true"`
	Anonymous     bool             `json:"anonymous"`
	AdminID       string           `json:"adminId,omitempty"`
	Email         string           `json:"email,omitempty"`
	Role          models.AdminRole `json:"role"`
	DisplayName   string           `json:"displayName,omitempty" example:"Mehmet Kaya"`
	ExpiresAt     int64            `json:"expiresAt"`
}
