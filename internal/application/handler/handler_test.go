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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireline/internal/application/service"
	applicationmemory "hireline/internal/application/store/memory"
	candidateservice "hireline/internal/candidate/service"
	candidatememory "hireline/internal/candidate/store/memory"
	postingservice "hireline/internal/posting/service"
	postingmemory "hireline/internal/posting/store/memory"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/audit"
	auditmemory "hireline/pkg/platform/audit/store/memory"
	"hireline/pkg/requestcontext"
)

// testRouter wires the public intake route next to the recruiter routes,
// with a fixed actor injected the way the auth middleware would.
func testRouter(t *testing.T) (http.Handler, *postingservice.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewService(auditmemory.NewInMemoryStore(), logger)

	candidates := candidateservice.NewService(candidatememory.NewInMemoryStore(), auditor, nil, logger, candidateservice.Config{})
	postings := postingservice.NewService(postingmemory.NewInMemoryStore(), auditor, nil, logger)
	applications := service.NewService(applicationmemory.NewInMemoryStore(), candidates, postings, auditor, nil, logger)

	h := New(applications, logger)
	actor := id.AccountID(uuid.New())
	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(requestcontext.WithActorID(req.Context(), actor)))
			})
		})
		h.Register(r)
	})
	return r, postings
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func openPosting(t *testing.T, postings *postingservice.Service) string {
	t.Helper()
	ctx := requestcontext.WithActorID(context.Background(), id.AccountID(uuid.New()))
	posting, err := postings.Create(ctx, postingservice.CreateInput{Title: "Backend Engineer"})
	require.NoError(t, err)
	_, err = postings.Open(ctx, posting.ID)
	require.NoError(t, err)
	return posting.ID.String()
}

func applyBody() map[string]string {
	return map[string]string{
		"national_id":      "12345678",
		"given_names":      "Juan Carlos",
		"paternal_surname": "Pérez",
		"maternal_surname": "García",
		"email":            "jcperez@mail.com",
		"phone":            "987654321",
	}
}

func submitApplication(t *testing.T, router http.Handler, postingID string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/apply/"+postingID, applyBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Application struct {
			ID string `json:"id"`
		} `json:"application"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Application.ID
}

func TestHandleApply(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)

	rec := doJSON(t, router, http.MethodPost, "/apply/"+postingID, applyBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["candidate_id"])
	application := resp["application"].(map[string]any)
	assert.Equal(t, "pool", application["stage"])
	assert.Equal(t, postingID, application["posting_id"])
}

func TestHandleApply_InvalidNationalID(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)

	body := applyBody()
	body["national_id"] = "123"
	rec := doJSON(t, router, http.MethodPost, "/apply/"+postingID, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleApply_DraftPosting(t *testing.T) {
	router, postings := testRouter(t)
	ctx := requestcontext.WithActorID(context.Background(), id.AccountID(uuid.New()))
	posting, err := postings.Create(ctx, postingservice.CreateInput{Title: "Backend Engineer"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/apply/"+posting.ID.String(), applyBody())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleApply_Twice(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)

	submitApplication(t, router, postingID)
	rec := doJSON(t, router, http.MethodPost, "/apply/"+postingID, applyBody())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleMove(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)
	applicationID := submitApplication(t, router, postingID)

	rec := doJSON(t, router, http.MethodPost, "/applications/"+applicationID+"/move", map[string]string{
		"stage": "cv_received",
		"note":  "CV on file",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cv_received", resp["stage"])
	history := resp["history"].([]any)
	require.Len(t, history, 1)
	change := history[0].(map[string]any)
	assert.Equal(t, "advance", change["kind"])
	assert.Equal(t, "CV on file", change["note"])
}

func TestHandleMove_UnknownStage(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)
	applicationID := submitApplication(t, router, postingID)

	rec := doJSON(t, router, http.MethodPost, "/applications/"+applicationID+"/move", map[string]string{
		"stage": "limbo",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMove_Backward(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)
	applicationID := submitApplication(t, router, postingID)

	rec := doJSON(t, router, http.MethodPost, "/applications/"+applicationID+"/move", map[string]string{
		"stage": "first_interview",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/applications/"+applicationID+"/move", map[string]string{
		"stage": "cv_received",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReactivate(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)
	applicationID := submitApplication(t, router, postingID)

	rec := doJSON(t, router, http.MethodPost, "/applications/"+applicationID+"/move", map[string]string{
		"stage": "discarded",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/applications/"+applicationID+"/reactivate", map[string]string{
		"note": "profile fits the new opening",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pool", resp["stage"])
}

func TestHandleBoard(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)
	submitApplication(t, router, postingID)

	rec := doJSON(t, router, http.MethodGet, "/board/"+postingID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var columns []struct {
		Stage        string           `json:"stage"`
		Applications []map[string]any `json:"applications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &columns))
	require.Len(t, columns, 9)
	assert.Equal(t, "pool", columns[0].Stage)
	assert.Len(t, columns[0].Applications, 1)
	// Empty columns serialize as arrays, never null.
	assert.NotNil(t, columns[1].Applications)
}

func TestHandleBoard_UnknownPosting(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/board/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGet(t *testing.T) {
	router, postings := testRouter(t)
	postingID := openPosting(t, postings)
	applicationID := submitApplication(t, router, postingID)

	rec := doJSON(t, router, http.MethodGet, "/applications/"+applicationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, applicationID, resp["id"])
}

func TestHandleGet_BadID(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/applications/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
