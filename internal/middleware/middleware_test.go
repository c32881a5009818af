package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/yigit/alumnidesk/internal/app/auth"
	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/auth"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r[jti], nil
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var body struct {
		Error *dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error
}

func serveError(err error) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { HandleAPIError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestHandleAPIError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{fmt.Errorf("approve: %w", apperrors.ErrRequestAlreadyDecided), http.StatusConflict, dto.ErrorCodeRequestDecided},
		{fmt.Errorf("load: %w", apperrors.ErrSessionNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{fmt.Errorf("%w: bad sheet", apperrors.ErrSpreadsheetUnreadable), http.StatusBadRequest, dto.ErrorCodeSpreadsheetUnreadable},
		{apperrors.ErrInvalidState, http.StatusConflict, dto.ErrorCodeInvalidState},
		{apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified},
		{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{apperrors.ErrDataIntegrity, http.StatusInternalServerError, dto.ErrorCodeDataIntegrity},
		{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeStoreUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tc := range cases {
		w := serveError(tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, errorBody(t, w).Code, tc.err.Error())
	}
}

func TestHandleAPIError_CustomMessageAndDetails(t *testing.T) {
	err := apperrors.NewValidationError("column mapping rejected").
		WithDetails(map[string]interface{}{"violations": []string{"Student ID is not mapped"}})
	w := serveError(fmt.Errorf("map columns: %w", err))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := errorBody(t, w)
	assert.Equal(t, "column mapping rejected", detail.Message)
	assert.Contains(t, fmt.Sprint(detail.Details), "Student ID is not mapped")

	w = serveError(errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	assert.NotContains(t, w.Body.String(), "10.0.0.1", "causes stay in the log")
}

func TestErrorHandler_RendersAttachedError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) { _ = c.Error(apperrors.ErrJobNotFound) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type authFixture struct {
	router  *gin.Engine
	jwt     *auth.JWTService
	revoked revokedSet
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	store.Put(docstore.CollectionAdmins, "adm1", map[string]any{"email": "a@u.edu", "status": "active", "role": string(models.RoleEventCoordinator)})

	jwtSvc := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", AccessTokenExp: time.Hour, GuestTokenExp: time.Hour, TokenIssuer: "test"})
	revoked := revokedSet{}
	m := NewAuthMiddleware(jwtSvc, revoked, appauth.NewAuthorizationService(repositories.NewAdminRepository(store)))

	r := gin.New()
	api := r.Group("/", m.JWTAuth())
	api.GET("/read", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextKeyRole)) })
	api.POST("/write", m.RequireStaff(), func(c *gin.Context) { c.String(http.StatusOK, AdminIDFrom(c)) })
	r.GET("/ws", m.WebSocketAuth(), func(c *gin.Context) { c.String(http.StatusOK, AdminIDFrom(c)) })
	return &authFixture{router: r, jwt: jwtSvc, revoked: revoked}
}

func (f *authFixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	f := newAuthFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/read", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/read", "not-a-jwt").Code)

	staff, err := f.jwt.GenerateToken(&models.Admin{ID: "adm1", Email: "a@u.edu", Role: models.RoleEventCoordinator})
	require.NoError(t, err)
	w := f.do(http.MethodGet, "/read", staff.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RoleEventCoordinator), w.Body.String())

	// only the websocket route reads the token from the query
	w = f.do(http.MethodGet, "/read?token="+staff.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = f.do(http.MethodGet, "/ws?token="+staff.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "adm1", w.Body.String())

	f.revoked[staff.Claims.ID] = true
	w = f.do(http.MethodGet, "/read", staff.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff(t *testing.T) {
	f := newAuthFixture(t)

	guest, err := f.jwt.GenerateGuestToken()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/read", guest.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/write", guest.AccessToken).Code)

	staff, err := f.jwt.GenerateToken(&models.Admin{ID: "adm1", Email: "a@u.edu", Role: models.RoleEventCoordinator})
	require.NoError(t, err)
	w := f.do(http.MethodPost, "/write", staff.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "adm1", w.Body.String())

	gone, err := f.jwt.GenerateToken(&models.Admin{ID: "deleted", Email: "d@u.edu", Role: models.RoleEventCoordinator})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/write", gone.AccessToken).Code)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.NewIsolated()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "204")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}
