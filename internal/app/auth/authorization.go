package auth

import (
	"context"
	"errors"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	pkgauth "github.com/yigit/alumnidesk/internal/pkg/auth"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// Authorization errors reported to the client as permission denied
var (
	ErrGuestReadOnly = errors.New("guest sessions are read-only")
	ErrNotActive     = errors.New("staff account is not active")
)

// AuthorizationService decides what an authenticated caller may change
type AuthorizationService struct {
	adminRepo *repositories.AdminRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(adminRepo *repositories.AdminRepository) *AuthorizationService {
	return &AuthorizationService{adminRepo: adminRepo}
}

// IsStaff checks if the claims belong to a staff session
func IsStaff(claims *pkgauth.Claims) bool {
	return claims != nil && !claims.Anonymous && claims.AdminID != "" && claims.Role != models.RoleGuest
}

// ValidateStaff returns an error unless claims belong to an active admin
func (s *AuthorizationService) ValidateStaff(ctx context.Context, claims *pkgauth.Claims) error {
	if !IsStaff(claims) {
		return apperrors.NewForbiddenError(ErrGuestReadOnly.Error())
	}

	admin, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrAdminNotFound) {
			logger.Error().Err(err).Str("adminId", claims.AdminID).Msg("Error getting admin in ValidateStaff")
		}
		return err
	}
	if admin.Status != models.AdminStatusActive {
		return apperrors.NewForbiddenError(ErrNotActive.Error())
	}
	return nil
}
