// Package handler exposes posting endpoints on the recruiter API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hireline/internal/posting/models"
	"hireline/internal/posting/service"
	"hireline/internal/transport/http/shared"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/requestcontext"
)

// Service defines the posting operations the handler depends on.
type Service interface {
	Create(ctx context.Context, input service.CreateInput) (*models.Posting, error)
	Get(ctx context.Context, postingID id.PostingID) (*models.Posting, error)
	List(ctx context.Context) ([]*models.Posting, error)
	Open(ctx context.Context, postingID id.PostingID) (*models.Posting, error)
	Suspend(ctx context.Context, postingID id.PostingID) (*models.Posting, error)
	Close(ctx context.Context, postingID id.PostingID) (*models.Posting, error)
	Cancel(ctx context.Context, postingID id.PostingID) (*models.Posting, error)
}

// Handler handles posting endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts posting routes. The caller wraps them in the auth
// middleware; these endpoints are recruiter-only.
func (h *Handler) Register(r chi.Router) {
	r.Post("/postings", h.handleCreate)
	r.Get("/postings", h.handleList)
	r.Get("/postings/{postingID}", h.handleGet)
	r.Post("/postings/{postingID}/open", h.transitionHandler(Service.Open))
	r.Post("/postings/{postingID}/suspend", h.transitionHandler(Service.Suspend))
	r.Post("/postings/{postingID}/close", h.transitionHandler(Service.Close))
	r.Post("/postings/{postingID}/cancel", h.transitionHandler(Service.Cancel))
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Area        string `json:"area"`
	Location    string `json:"location"`
}

type postingResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Area        string     `json:"area,omitempty"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

func toPostingResponse(p *models.Posting) postingResponse {
	return postingResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Area:        p.Area,
		Location:    p.Location,
		Status:      string(p.Status),
		CreatedBy:   p.CreatedBy.String(),
		CreatedAt:   p.CreatedAt,
		OpenedAt:    p.OpenedAt,
		ClosedAt:    p.ClosedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	posting, err := h.service.Create(ctx, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Area:        req.Area,
		Location:    req.Location,
	})
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeInvalidInput) {
			h.logger.ErrorContext(ctx, "failed to create posting",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toPostingResponse(posting))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postings, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list postings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	out := make([]postingResponse, 0, len(postings))
	for _, p := range postings {
		out = append(out, toPostingResponse(p))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postingID, err := id.ParsePostingID(chi.URLParam(r, "postingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	posting, err := h.service.Get(ctx, postingID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPostingResponse(posting))
}

// transitionHandler builds one handler per lifecycle verb; they differ only
// in the service method invoked.
func (h *Handler) transitionHandler(op func(Service, context.Context, id.PostingID) (*models.Posting, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		postingID, err := id.ParsePostingID(chi.URLParam(r, "postingID"))
		if err != nil {
			shared.WriteError(w, err)
			return
		}

		posting, err := op(h.service, ctx, postingID)
		if err != nil {
			if dErrors.CodeOf(err) == dErrors.CodeInternal {
				h.logger.ErrorContext(ctx, "posting transition failed",
					"request_id", requestcontext.RequestID(ctx),
					"posting_id", postingID,
					"error", err.Error(),
				)
			}
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, toPostingResponse(posting))
	}
}
