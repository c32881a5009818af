package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	pkgauth "github.com/yigit/alumnidesk/internal/pkg/auth"
)

func staffClaims(adminID string) *pkgauth.Claims {
	return &pkgauth.Claims{
		AdminID:          adminID,
		Role:             models.RoleEventCoordinator,
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"},
	}
}

func TestValidateStaff(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	store.Put(docstore.CollectionAdmins, "active", map[string]any{"email": "a@u.edu", "status": string(models.AdminStatusActive)})
	store.Put(docstore.CollectionAdmins, "pending", map[string]any{"email": "p@u.edu", "status": string(models.AdminStatusPending)})
	svc := NewAuthorizationService(repositories.NewAdminRepository(store))

	assert.NoError(t, svc.ValidateStaff(ctx, staffClaims("active")))

	err := svc.ValidateStaff(ctx, staffClaims("pending"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = svc.ValidateStaff(ctx, staffClaims("deleted"))
	assert.ErrorIs(t, err, apperrors.ErrAdminNotFound)

	guest := &pkgauth.Claims{Anonymous: true, Role: models.RoleGuest}
	err = svc.ValidateStaff(ctx, guest)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
