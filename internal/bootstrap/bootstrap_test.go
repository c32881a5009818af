package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/config"
	"github.com/yigit/alumnidesk/internal/pkg/auth"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *apiClient) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *apiClient) upload(path, fileName, content string) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(c.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(c.t, err)
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req)
}

func (c *apiClient) send(req *http.Request) (int, envelope) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(rec.Body.Bytes(), []byte("{")) {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func newTestApp(t *testing.T) (*apiClient, *Dependencies) {
	t.Helper()
	auth.BcryptCost = 4
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.StoragePath = filepath.Join(t.TempDir(), "uploads")
	cfg.Server.PublicBaseURL = "http://localhost:8080"
	cfg.Database.Driver = config.DriverMemory
	cfg.JWT.Secret = "bootstrap-test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.GuestTokenExpiration = "1h"
	cfg.JWT.Issuer = "alumnidesk-test"
	cfg.Ingestion.SessionTTL = "1h"
	cfg.Ingestion.SpeakerRatio = 0.05
	cfg.Ingestion.VolunteerRatio = 0.10
	cfg.Ingestion.LinkedURLBase = "https://alumni.test"
	cfg.Seed.AdminEmail = "root@university.edu"
	cfg.Seed.AdminPassword = "changeme1"

	ctx := context.Background()
	lgr := zerolog.Nop()
	infra, err := OpenInfrastructure(ctx, cfg, nil, lgr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.Close(context.Background()) })

	deps, err := BuildDependencies(ctx, cfg, infra, lgr)
	require.NoError(t, err)
	router, err := SetupRouter(cfg, deps, lgr)
	require.NoError(t, err)

	return &apiClient{t: t, router: router}, deps
}

func (c *apiClient) login(email, password string) {
	c.t.Helper()
	c.token = ""
	code, env := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, code)
	c.token = decode[struct {
		AccessToken string `json:"accessToken"`
	}](c.t, env).AccessToken
}

func TestRouter_GuestIsReadOnly(t *testing.T) {
	api, _ := newTestApp(t)

	code, _ := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, "/api/v1/dashboard/alumni", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := api.do(http.MethodPost, "/api/v1/auth/guest", nil)
	require.Equal(t, http.StatusOK, code)
	api.token = decode[struct {
		AccessToken string `json:"accessToken"`
	}](t, env).AccessToken

	code, _ = api.do(http.MethodGet, "/api/v1/dashboard/alumni", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, "/api/v1/events", map[string]any{"eventTitle": "Gala", "location": "Izmir", "year": 2024})
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTH_010", env.Error.Code)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	api, _ := newTestApp(t)
	api.login("root@university.edu", "changeme1")

	code, env := api.do(http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "System Administrator", decode[struct {
		DisplayName string `json:"displayName"`
	}](t, env).DisplayName)

	code, _ = api.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_IngestionEndToEnd(t *testing.T) {
	api, deps := newTestApp(t)
	api.login("root@university.edu", "changeme1")

	code, env := api.upload("/api/v1/roster", "roster.csv", "Student ID\n1001\n1002\n1003\n")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, decode[struct {
		Inserted int `json:"inserted"`
	}](t, env).Inserted)

	sheet := "Attendance export,,\nID,Name,Employer\n1001,Ada,Orbit\n1002,Alan,Nova\n9999,Eve,Spy\n"
	code, env = api.upload("/api/v1/ingestions", "homecoming.csv", sheet)
	require.Equal(t, http.StatusCreated, code)
	sessionID := decode[struct {
		SessionID string `json:"sessionId"`
	}](t, env).SessionID
	base := "/api/v1/ingestions/" + sessionID

	// the progress feed of a session is visible to its owner only, and the
	// query token is not accepted outside /ws
	guest := &apiClient{t: t, router: api.router}
	code, env = guest.do(http.MethodPost, "/api/v1/auth/guest", nil)
	require.Equal(t, http.StatusOK, code)
	guestToken := decode[struct {
		AccessToken string `json:"accessToken"`
	}](t, env).AccessToken
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?topic=ingestion:"+sessionID+"&token="+guestToken, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	code, _ = guest.do(http.MethodGet, "/api/v1/dashboard/alumni?token="+guestToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPut, base+"/header", map[string]int{"rowIndex": 1})
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodPut, base+"/mapping", map[string]any{"mapping": map[string]string{
		"Student ID":   "ID",
		"First Name":   "Name",
		"Company Name": "Employer",
	}})
	require.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, base+"/validate", nil)
	require.Equal(t, http.StatusOK, code)
	validated := decode[struct {
		Rejected int              `json:"rejected"`
		ToAdd    []map[string]any `json:"toAdd"`
	}](t, env)
	assert.Equal(t, 1, validated.Rejected)
	assert.Len(t, validated.ToAdd, 2)

	code, env = api.do(http.MethodPost, base+"/commit?wait=true", map[string]any{
		"eventTitle": "Homecoming", "year": 2024, "location": "Ankara",
	})
	require.Equal(t, http.StatusOK, code, string(env.Data))
	assert.Equal(t, 2, decode[struct {
		RowsProcessed int `json:"rowsProcessed"`
	}](t, env).RowsProcessed)

	code, env = api.do(http.MethodGet, "/api/v1/uploads", nil)
	require.Equal(t, http.StatusOK, code)
	uploads := decode[[]struct {
		AdminName string `json:"adminName"`
		Status    string `json:"status"`
	}](t, env)
	require.Len(t, uploads, 1)
	assert.Equal(t, "System Administrator", uploads[0].AdminName)
	assert.Equal(t, "Completed", uploads[0].Status)

	code, env = api.do(http.MethodGet, "/api/v1/alumni?search=orbit", nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[struct {
		Pagination struct {
			TotalItems int `json:"totalItems"`
		} `json:"pagination"`
	}](t, env)
	assert.Equal(t, 1, page.Pagination.TotalItems)

	links, err := deps.Repos.EventAlumniRepository.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestLoadConfigAndSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: memory\njwt:\n  secret: s\nlogging:\n  level: warn\n"), 0o600))

	cfg, _, err := LoadConfigAndSetupLogger(path)
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	opts := IngestionOptions(cfg)
	assert.Equal(t, 0.05, opts.SpeakerRatio)
	assert.Equal(t, "https://yourapp.com/alumni", opts.LinkedURLBase)
}
