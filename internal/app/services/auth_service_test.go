package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/auth"
	"github.com/yigit/alumnidesk/internal/pkg/kv"
)

type capturedMail struct {
	verifyTokens []string
	welcomed     []string
}

func (m *capturedMail) SendVerificationEmail(_, _, token string) error {
	m.verifyTokens = append(m.verifyTokens, token)
	return nil
}

func (m *capturedMail) SendWelcomeEmail(toEmail, _ string) error {
	m.welcomed = append(m.welcomed, toEmail)
	return nil
}

func newAuth(t *testing.T, env *testEnv) (*AuthService, *auth.JWTService, *capturedMail) {
	t.Helper()
	auth.BcryptCost = 4
	jwtSvc := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "alumnidesk-test"})
	mail := &capturedMail{}
	return NewAuthService(env.repos.AdminRepository, jwtSvc, kv.NewMemoryStore(), mail, env.logger), jwtSvc, mail
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     "Officer@University.edu",
		Password:  "secret123",
		FirstName: "Mehmet",
		LastName:  "Kaya",
		Role:      models.RoleAlumniRelationsManager,
	}
}

func TestAuth_RegisterVerifyLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, jwtSvc, mail := newAuth(t, env)

	reg, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "officer@university.edu", reg.Email)
	require.Len(t, mail.verifyTokens, 1)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "officer@university.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)

	require.NoError(t, svc.VerifyEmail(ctx, mail.verifyTokens[0]))
	assert.Equal(t, []string{"officer@university.edu"}, mail.welcomed)

	token, err := svc.Login(ctx, &dto.LoginRequest{Email: "OFFICER@university.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.False(t, token.Anonymous)

	claims, err := jwtSvc.ValidateAndExtractClaims(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.AdminID, claims.AdminID)
	assert.Equal(t, models.RoleAlumniRelationsManager, claims.Role)

	session, err := svc.Session(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "Mehmet Kaya", session.DisplayName)
}

func TestAuth_RegisterRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, _, _ := newAuth(t, env)

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	bad := registerRequest()
	bad.Email = "new@university.edu"
	bad.Role = "Janitor"
	_, err = svc.Register(ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	weak := registerRequest()
	weak.Email = "weak@university.edu"
	weak.Password = "onlyletters"
	_, err = svc.Register(ctx, weak)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuth_WrongPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, _, _ := newAuth(t, env)

	_, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@university.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "officer@university.edu", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuth_GuestAndLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, jwtSvc, _ := newAuth(t, env)

	guest, err := svc.Guest(ctx)
	require.NoError(t, err)
	assert.True(t, guest.Anonymous)

	claims, err := jwtSvc.ValidateAndExtractClaims(guest.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, claims.Role)

	session, err := svc.Session(ctx, claims)
	require.NoError(t, err)
	assert.True(t, session.Anonymous)

	revoked, err := svc.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, claims))
	revoked, err = svc.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuth_VerifyEmailErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, _, mail := newAuth(t, env)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, "nope"), apperrors.ErrInvalidEmailToken)

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, mail.verifyTokens[0]))
	// the token is cleared on activation
	assert.ErrorIs(t, svc.VerifyEmail(ctx, mail.verifyTokens[0]), apperrors.ErrInvalidEmailToken)
}
