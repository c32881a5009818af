package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// errorMapping binds a sentinel to its HTTP form. Client errors with
// exposeCause report the wrapped message; everything else a fixed text.
type errorMapping struct {
	target      error
	status      int
	code        dto.ErrorCode
	message     string
	exposeCause bool
}

// errorMappings is checked in order, so specific sentinels come first
var errorMappings = []errorMapping{
	{apperrors.ErrSpreadsheetUnreadable, http.StatusBadRequest, dto.ErrorCodeSpreadsheetUnreadable, "Spreadsheet could not be read", false},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", true},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request", true},
	{apperrors.ErrInvalidEmailToken, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired verification token", false},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials", false},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", false},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked", false},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", false},

	{apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Email not verified", false},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied", false},

	{apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Ingestion session not found", false},
	{apperrors.ErrRequestNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Update request not found", false},
	{apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Job not found", false},
	{apperrors.ErrAdminNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Admin not found", false},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", false},

	{apperrors.ErrInvalidState, http.StatusConflict, dto.ErrorCodeInvalidState, "Operation not allowed in the current state", true},
	{apperrors.ErrRequestAlreadyDecided, http.StatusConflict, dto.ErrorCodeRequestDecided, "Update request already decided", false},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists", false},
	{apperrors.ErrEmailAlreadyVerified, http.StatusConflict, dto.ErrorCodeConflict, "Email already verified", false},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists", false},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict", true},

	{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeStoreUnavailable, "Document store unavailable", false},
	{apperrors.ErrDataIntegrity, http.StatusInternalServerError, dto.ErrorCodeDataIntegrity, "Stored data failed an integrity check", false},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := resolveError(err)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", status).
		Msg("Request failed")

	c.AbortWithStatusJSON(status, dto.APIResponse{Error: detail, Timestamp: time.Now()})
}

func resolveError(err error) (int, *dto.ErrorDetail) {
	var custom *apperrors.CustomError
	hasCustom := errors.As(err, &custom)

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		switch {
		case hasCustom && custom.Message != "":
			detail.Message = custom.Message
		case m.exposeCause:
			detail.Message = err.Error()
		}
		if hasCustom && len(custom.Details) > 0 {
			detail = detail.WithDetails(custom.Details)
		}
		if m.status < http.StatusInternalServerError {
			detail.Severity = dto.ErrorSeverityWarning
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// ErrorHandler renders errors handlers attached with c.Error when they did
// not write a response themselves
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		HandleAPIError(c, c.Errors.Last().Err)
	}
}
