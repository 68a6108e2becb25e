package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireline/internal/account/service"
	"hireline/internal/account/store/memory"
	jwttoken "hireline/internal/jwt_token"
	"hireline/pkg/platform/audit"
	auditmemory "hireline/pkg/platform/audit/store/memory"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewService(auditmemory.NewInMemoryStore(), logger)
	tokens := jwttoken.NewJWTService("test-signing-key", "hireline", "hireline-dashboard")
	svc := service.NewService(memory.NewInMemoryStore(), tokens, auditor, logger, time.Hour)
	require.NoError(t, svc.Bootstrap(context.Background(), "admin@hireline.test", "s3cret-pass"))

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func postToken(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleToken(t *testing.T) {
	router := testRouter(t)

	rec := postToken(t, router, map[string]string{
		"email":    "admin@hireline.test",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["access_token"])
	assert.Equal(t, "Bearer", resp["token_type"])
	assert.Equal(t, float64(3600), resp["expires_in"])
}

func TestHandleToken_BadCredentials(t *testing.T) {
	router := testRouter(t)

	rec := postToken(t, router, map[string]string{
		"email":    "admin@hireline.test",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleToken_MalformedBody(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
