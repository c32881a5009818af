package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

func newService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "alumnidesk"})
}

func TestJWTService_StaffTokenRoundTrip(t *testing.T) {
	svc := newService()
	admin := &models.Admin{ID: "a-1", Email: "staff@uni.edu", Role: models.RoleEventCoordinator}

	issued, err := svc.GenerateToken(admin)
	require.NoError(t, err)

	claims, err := svc.ValidateAndExtractClaims(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a-1", claims.AdminID)
	assert.Equal(t, models.RoleEventCoordinator, claims.Role)
	assert.False(t, claims.Anonymous)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_GuestToken(t *testing.T) {
	svc := newService()

	issued, err := svc.GenerateGuestToken()
	require.NoError(t, err)

	claims, err := svc.ValidateAndExtractClaims(issued.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Anonymous)
	assert.Equal(t, models.RoleGuest, claims.Role)
	assert.Empty(t, claims.AdminID)
}

func TestJWTService_RejectsExpiredAndForeignTokens(t *testing.T) {
	svc := newService()
	issued, err := svc.GenerateToken(&models.Admin{ID: "a-1", Email: "x@uni.edu"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateAndExtractClaims(issued.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	other := NewJWTService(JWTConfig{SecretKey: "another-secret", AccessTokenExp: time.Hour})
	_, err = other.ValidateAndExtractClaims(issued.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = ExtractBearerToken("  ")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))

	token, err := GenerateVerificationToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
}
