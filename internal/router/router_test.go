package router

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janus/internal/auth"
	"janus/internal/classifier"
	"janus/internal/config"
	"janus/internal/db"
	"janus/internal/errors"
	"janus/internal/handler"
	"janus/internal/repository"
	"janus/internal/service"
)

type stubClassifier struct {
	calls   atomic.Int32
	emotion classifier.Emotion
	err     error
}

func (s *stubClassifier) Classify(ctx context.Context, systemInstructions, text, model string) (classifier.Emotion, error) {
	s.calls.Add(1)
	return s.emotion, s.err
}

type testServer struct {
	e        *echo.Echo
	repo     repository.AccountRepository
	classify *stubClassifier
}

func newTestServer(t *testing.T, seeds ...config.SeedAccount) *testServer {
	t.Helper()
	gormDB, err := db.NewSQLiteMemory()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewAccountRepository(gormDB)
	accountService := service.NewAccountService(repo)
	_, _, err = accountService.SeedAccounts(context.Background(), seeds)
	require.NoError(t, err)

	jwtService := auth.NewJWTService("test-secret", time.Hour)
	authService := service.NewAuthService(repo, jwtService, auth.NewMemorySessionStore())
	stub := &stubClassifier{emotion: classifier.Joy}
	classificationService := service.NewClassificationService(authService, accountService, stub, service.ClassificationConfig{ModelID: "m"}, logger)

	e := echo.New()
	Register(e, logger, jwtService, authService,
		handler.NewAuthHandler(authService, logger),
		handler.NewClassifyHandler(classificationService, logger),
		handler.NewStatusHandler(nil, errors.ErrAssetMissing),
	)
	return &testServer{e: e, repo: repo, classify: stub}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var payload map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec, payload := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return payload["token"].(string)
}

func TestRouter_SingleUseFlow(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 1})

	token := s.login(t, "demo1", "pw")

	rec, payload := s.do(t, http.MethodGet, "/api/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, payload["remaining_queries"])
	assert.Equal(t, "authenticated", payload["state"])

	rec, payload = s.do(t, http.MethodPost, "/api/classify", token, `{"text":"What a lovely day"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "joy", payload["emotion"])
	assert.EqualValues(t, 0, payload["remaining_queries"])

	account, err := s.repo.FindByUsername(context.Background(), "demo1")
	require.NoError(t, err)
	assert.Equal(t, 0, account.UsesAvailable)
	assert.False(t, account.Active)

	rec, payload = s.do(t, http.MethodPost, "/api/classify", token, `{"text":"again"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "QUOTA_EXHAUSTED", payload["code"])
	assert.EqualValues(t, 1, s.classify.calls.Load())

	rec, payload = s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"demo1","password":"pw"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "QUOTA_EXHAUSTED", payload["code"])
}

func TestRouter_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 3})

	unknownRec, unknown := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"ghost","password":"pw"}`)
	wrongRec, wrong := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"demo1","password":"bad"}`)

	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	assert.Equal(t, unknownRec.Code, wrongRec.Code)
	assert.Equal(t, unknown, wrong)
	assert.Equal(t, "INVALID_CREDENTIALS", unknown["code"])
}

func TestRouter_RequiresSession(t *testing.T) {
	s := newTestServer(t)

	rec, payload := s.do(t, http.MethodPost, "/api/classify", "", `{"text":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", payload["code"])

	rec, _ = s.do(t, http.MethodGet, "/api/me", "forged.token.value", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, s.classify.calls.Load())
}

func TestRouter_SessionCheckedBeforeBody(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 2})

	rec, payload := s.do(t, http.MethodPost, "/api/classify", "", `{"text":""}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", payload["code"])

	token := s.login(t, "demo1", "pw")
	rec, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload = s.do(t, http.MethodPost, "/api/classify", token, `{"text":""}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", payload["code"])
}

func TestRouter_SuspendedAccountMidSession(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 5})
	token := s.login(t, "demo1", "pw")

	require.NoError(t, s.repo.SetActive(context.Background(), "demo1", false))

	rec, payload := s.do(t, http.MethodPost, "/api/classify", token, `{"text":"hello"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", payload["code"])
	assert.Zero(t, s.classify.calls.Load())

	_, me := s.do(t, http.MethodGet, "/api/me", token, "")
	assert.EqualValues(t, 5, me["remaining_queries"])
	assert.Equal(t, "authenticated", me["state"])
}

func TestRouter_LogoutEndsSession(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 3})
	token := s.login(t, "demo1", "pw")

	rec, _ := s.do(t, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := s.do(t, http.MethodGet, "/api/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", payload["code"])
}

func TestRouter_LoginRevokesPreviousSession(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 3})
	first := s.login(t, "demo1", "pw")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"demo1","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: first})
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cookieSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.SessionCookie && c.Value != "" {
			cookieSet = true
		}
	}
	assert.True(t, cookieSet)

	old, _ := s.do(t, http.MethodGet, "/api/me", first, "")
	assert.Equal(t, http.StatusUnauthorized, old.Code)
}

func TestRouter_ClassificationFailureKeepsQuotaSpent(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 2})
	s.classify.err = stderrors.New("upstream down")
	token := s.login(t, "demo1", "pw")

	rec, payload := s.do(t, http.MethodPost, "/api/classify", token, `{"text":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "CLASSIFICATION_FAILED", payload["code"])

	_, me := s.do(t, http.MethodGet, "/api/me", token, "")
	assert.EqualValues(t, 1, me["remaining_queries"])
}

func TestRouter_ValidationAndStatus(t *testing.T) {
	s := newTestServer(t, config.SeedAccount{Username: "demo1", Password: "pw", Uses: 2})

	rec, payload := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"demo1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])

	token := s.login(t, "demo1", "pw")
	rec, _ = s.do(t, http.MethodPost, "/api/classify", token, `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload = s.do(t, http.MethodGet, "/api/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Janus", payload["name"])
	assert.Len(t, payload["emotions"], len(classifier.Emotions))
	assert.NotEmpty(t, payload["warnings"])

	rec, _ = s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
