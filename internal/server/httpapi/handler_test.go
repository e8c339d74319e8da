package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"credkeeper/internal/logging"
	"credkeeper/internal/server/auth"
	"credkeeper/internal/server/config"
	"credkeeper/internal/server/credentials"
	"credkeeper/internal/server/users"
)

type recordingSink struct {
	bodies []string
}

func (r *recordingSink) Send(ctx context.Context, to, subject, body string) error {
	r.bodies = append(r.bodies, body)
	return nil
}

func newTestServer(t *testing.T) (*Server, *recordingSink) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenSecret = "access-secret"
	cfg.RefreshTokenSecret = "refresh-secret"
	cfg.BcryptCost = bcrypt.MinCost

	sink := &recordingSink{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1})))

	service := credentials.NewService(
		users.NewInMemoryRepository(),
		auth.NewHasher(cfg.BcryptCost),
		auth.NewTokenIssuer(cfg),
		auth.NewResetTokenManager(cfg.ResetTokenTTL),
		sink,
		cfg,
		logger,
	)

	return NewServer(cfg, service, nil, logger), sink
}

func doJSON(t *testing.T, s *Server, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func registerAna(t *testing.T, s *Server) map[string]any {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode(t, rec)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister(t *testing.T) {
	s, _ := newTestServer(t)

	resp := registerAna(t, s)
	user := resp["user"].(map[string]any)
	tokens := resp["tokens"].(map[string]any)

	assert.Equal(t, "ana@x.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.NotEmpty(t, tokens["accessToken"])
	assert.NotEmpty(t, tokens["refreshToken"])
}

func TestRegister_Duplicate(t *testing.T) {
	s, _ := newTestServer(t)
	registerAna(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Ana", "email": "Ana@X.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "ana@x.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	s, _ := newTestServer(t)
	registerAna(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ana@x.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decode(t, rec)["tokens"].(map[string]any)
	assert.NotEmpty(t, tokens["accessToken"])
}

func TestLogin_BadCredentialsIndistinguishable(t *testing.T) {
	s, _ := newTestServer(t)
	registerAna(t, s)

	wrongPassword := doJSON(t, s, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ana@x.com", "password": "wrong-password"}, nil)
	unknownEmail := doJSON(t, s, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "nobody@x.com", "password": "secret1"}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestRefresh(t *testing.T) {
	s, _ := newTestServer(t)
	resp := registerAna(t, s)
	refresh := resp["tokens"].(map[string]any)["refreshToken"].(string)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refreshToken": refresh}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refreshToken": "garbage"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPassword(t *testing.T) {
	s, sink := newTestServer(t)
	registerAna(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "ana@x.com"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sink.bodies, 1)

	rec = doJSON(t, s, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "nobody@x.com"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPassword(t *testing.T) {
	s, sink := newTestServer(t)
	registerAna(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "ana@x.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.bodies, 1)

	body := sink.bodies[0]
	token := body[strings.LastIndex(body, "/")+1:]

	rec = doJSON(t, s, http.MethodPost, "/api/auth/reset-password/"+token,
		map[string]string{"password": "new-secret"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// the token is single-use
	rec = doJSON(t, s, http.MethodPost, "/api/auth/reset-password/"+token,
		map[string]string{"password": "other-secret"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// new password works
	rec = doJSON(t, s, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ana@x.com", "password": "new-secret"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	s, _ := newTestServer(t)
	resp := registerAna(t, s)
	access := resp["tokens"].(map[string]any)["accessToken"].(string)
	userID := resp["user"].(map[string]any)["id"].(string)

	rec := doJSON(t, s, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	header := http.Header{}
	header.Set("Authorization", fmt.Sprintf("Bearer %s", access))
	rec = doJSON(t, s, http.MethodGet, "/api/auth/me", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, decode(t, rec)["id"])
}
