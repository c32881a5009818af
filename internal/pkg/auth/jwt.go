package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	GuestTokenExp  time.Duration
	TokenIssuer    string
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	if config.GuestTokenExp <= 0 {
		config.GuestTokenExp = config.AccessTokenExp
	}
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Claims defines JWT token content. Anonymous sessions carry no AdminID.
type Claims struct {
	AdminID   string           `json:"adminId,omitempty"`
	Email     string           `json:"email,omitempty"`
	Role      models.AdminRole `json:"role"`
	Anonymous bool             `json:"anonymous"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token and its lifetime
type IssuedToken struct {
	AccessToken string
	ExpiresIn   time.Duration
	Claims      *Claims
}

// GenerateToken signs an access token for a staff account
func (s *JWTService) GenerateToken(admin *models.Admin) (*IssuedToken, error) {
	claims := &Claims{
		AdminID: admin.ID,
		Email:   admin.Email,
		Role:    admin.Role,
	}
	return s.sign(claims, admin.ID, s.config.AccessTokenExp)
}

// GenerateGuestToken signs an anonymous, read-only token
func (s *JWTService) GenerateGuestToken() (*IssuedToken, error) {
	claims := &Claims{
		Role:      models.RoleGuest,
		Anonymous: true,
	}
	return s.sign(claims, "guest-"+uuid.NewString(), s.config.GuestTokenExp)
}

func (s *JWTService) sign(claims *Claims, subject string, ttl time.Duration) (*IssuedToken, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.config.TokenIssuer,
		Subject:   subject,
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	return &IssuedToken{AccessToken: signed, ExpiresIn: ttl, Claims: claims}, nil
}

// ValidateToken parses and verifies a token
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.ErrTokenInvalid
}

// ValidateAndExtractClaims validates a token and checks the claims are
// consistent: staff tokens need an admin id, every token needs a jti.
func (s *JWTService) ValidateAndExtractClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.ID == "" || (!claims.Anonymous && claims.AdminID == "") {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", apperrors.ErrTokenInvalid
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), nil
	}

	// Otherwise just return the entire header value as the token
	return authHeader, nil
}
