package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/auth"
	"github.com/yigit/alumnidesk/internal/pkg/email"
	"github.com/yigit/alumnidesk/internal/pkg/kv"
	"github.com/yigit/alumnidesk/internal/pkg/validation"
)

const revokedKeyPrefix = "auth:revoked:"

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// AuthService handles staff registration, login and sign-out
type AuthService struct {
	adminRepo    *repositories.AdminRepository
	jwtService   *auth.JWTService
	revoked      kv.Store
	emailService email.EmailService
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService. emailService may be nil.
func NewAuthService(
	adminRepo *repositories.AdminRepository,
	jwtService *auth.JWTService,
	revoked kv.Store,
	emailService email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:    adminRepo,
		jwtService:   jwtService,
		revoked:      revoked,
		emailService: emailService,
		logger:       logger.With().Str("component", "auth").Logger(),
		now:          time.Now,
	}
}

// validateEmail validates an email address
func (s *AuthService) validateEmail(address string) error {
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidationFailed)
	}
	if !emailRegex.MatchString(strings.ToLower(strings.TrimSpace(address))) {
		return fmt.Errorf("%w: invalid email format", apperrors.ErrValidationFailed)
	}
	return nil
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", apperrors.ErrValidationFailed)
	}

	hasLetter, hasDigit := false, false
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain at least one letter and one digit", apperrors.ErrValidationFailed)
	}
	return nil
}

// validateRole checks the role is one of the staff roles
func validateRole(role models.AdminRole) error {
	if validation.IsAdminRole(role) {
		return nil
	}
	return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidationFailed, role)
}

// Register creates a pending admin and sends the verification email
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validateRole(req.Role); err != nil {
		return nil, err
	}

	if _, err := s.adminRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !apperrors.Is(err, apperrors.ErrAdminNotFound) {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateVerificationToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	admin := &models.Admin{
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Role:              req.Role,
		Status:            models.AdminStatusPending,
		PasswordHash:      hash,
		VerificationToken: token,
		CreatedAt:         &now,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendVerificationEmail(admin.Email, admin.DisplayName(), token); err != nil {
			// the account exists; the admin can ask for the link again
			s.logger.Error().Err(err).Str("adminId", admin.ID).Msg("Failed to send verification email")
		}
	}

	s.logger.Info().Str("adminId", admin.ID).Str("role", string(admin.Role)).Msg("Admin registered")
	return &dto.RegisterResponse{
		AdminID: admin.ID,
		Email:   admin.Email,
		Message: "Registration successful. Please check your email to verify your account.",
	}, nil
}

// VerifyEmail activates the admin holding token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ErrInvalidEmailToken
	}
	admin, err := s.adminRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAdminNotFound) {
			return apperrors.ErrInvalidEmailToken
		}
		return err
	}
	if admin.Status == models.AdminStatusActive {
		return apperrors.ErrEmailAlreadyVerified
	}
	if err := s.adminRepo.Activate(ctx, admin.ID); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(admin.Email, admin.DisplayName()); err != nil {
			s.logger.Warn().Err(err).Str("adminId", admin.ID).Msg("Failed to send welcome email")
		}
	}
	s.logger.Info().Str("adminId", admin.ID).Msg("Admin email verified")
	return nil
}

// Login authenticates an admin
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password cannot be empty", apperrors.ErrValidationFailed)
	}

	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if admin.Status != models.AdminStatusActive {
		return nil, apperrors.ErrEmailNotVerified
	}

	issued, err := s.jwtService.GenerateToken(admin)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("adminId", admin.ID).Msg("Admin logged in")
	return tokenResponse(issued), nil
}

// Guest issues an anonymous read-only token
func (s *AuthService) Guest(_ context.Context) (*dto.TokenResponse, error) {
	issued, err := s.jwtService.GenerateGuestToken()
	if err != nil {
		return nil, err
	}
	return tokenResponse(issued), nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrTokenInvalid
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKeyPrefix+claims.ID, []byte("1"), ttl); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	s.logger.Info().Str("subject", claims.Subject).Msg("Token revoked")
	return nil
}

// IsRevoked reports whether a token id was signed out
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked.Exists(ctx, revokedKeyPrefix+jti)
}

// Session describes the caller. Staff sessions are checked against the
// admin collection so deleted accounts lose access.
func (s *AuthService) Session(ctx context.Context, claims *auth.Claims) (*dto.SessionResponse, error) {
	resp := &dto.SessionResponse{
		Authenticated: true,
		Anonymous:     claims.Anonymous,
		Role:          claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.Anonymous {
		return resp, nil
	}

	admin, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		return nil, err
	}
	resp.AdminID = admin.ID
	resp.Email = admin.Email
	resp.Role = admin.Role
	resp.DisplayName = admin.DisplayName()
	return resp, nil
}

func tokenResponse(issued *auth.IssuedToken) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken: issued.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(issued.ExpiresIn.Seconds()),
		Anonymous:   issued.Claims.Anonymous,
	}
}
