// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/middleware"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles staff registration
// @Summary Register a staff account
// @Description Creates a pending staff account and emails a verification link. The account can log in once verified.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Staff registration information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "Registration initiated. Check email for verification link."
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or invalid role"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid registration request payload")
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// Login handles staff login
// @Summary Staff login
// @Description Authenticates a verified staff account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Email not verified"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      token,
		Timestamp: time.Now(),
	})
}

// Guest issues an anonymous read-only token
// @Summary Continue as guest
// @Description Issues an anonymous token that can read dashboards and listings but cannot change anything
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Guest token issued"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/guest [post]
func (c *AuthController) Guest(ctx *gin.Context) {
	token, err := c.authService.Guest(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      token,
		Timestamp: time.Now(),
	})
}

// VerifyEmail handles email verification
// @Summary Verify email address
// @Description Activates the staff account holding the verification token
// @Tags auth
// @Produce json
// @Param token query string true "Verification token sent to the staff email"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Email verified successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid or missing token"
// @Failure 409 {object} dto.ErrorResponse "Email already verified"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/verify-email [get]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing verification token")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.authService.VerifyEmail(ctx.Request.Context(), token); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Email verified successfully. You can now log in to your account."},
		Timestamp: time.Now(),
	})
}

// Session describes the caller
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /auth/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	session, err := c.authService.Session(ctx.Request.Context(), claims)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAdminNotFound) {
			err = apperrors.ErrTokenInvalid
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      session,
		Timestamp: time.Now(),
	})
}

// Logout revokes the caller's token
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), claims); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Logged out"},
		Timestamp: time.Now(),
	})
}
