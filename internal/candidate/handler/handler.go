// Package handler exposes candidate endpoints on the recruiter API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hireline/internal/candidate/models"
	"hireline/internal/candidate/service"
	"hireline/internal/match"
	"hireline/internal/transport/http/shared"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/requestcontext"
)

// Service defines the candidate operations the handler depends on.
type Service interface {
	Register(ctx context.Context, input service.RegisterInput) (*models.Candidate, error)
	Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)
	List(ctx context.Context) ([]*models.Candidate, error)
	FindDuplicates(ctx context.Context, identity match.Identity) ([]service.DuplicateMatch, error)
}

// Handler handles candidate endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts candidate routes. The caller wraps them in the auth
// middleware; these endpoints are recruiter-only.
func (h *Handler) Register(r chi.Router) {
	r.Post("/candidates", h.handleRegister)
	r.Get("/candidates", h.handleList)
	r.Get("/candidates/{candidateID}", h.handleGet)
	r.Post("/candidates/duplicate-check", h.handleDuplicateCheck)
}

type candidateRequest struct {
	NationalID      string `json:"national_id"`
	GivenNames      string `json:"given_names"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
}

type candidateResponse struct {
	ID              string    `json:"id"`
	NationalID      string    `json:"national_id"`
	GivenNames      string    `json:"given_names"`
	PaternalSurname string    `json:"paternal_surname"`
	MaternalSurname string    `json:"maternal_surname,omitempty"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

func toCandidateResponse(c *models.Candidate) candidateResponse {
	return candidateResponse{
		ID:              c.ID.String(),
		NationalID:      c.NationalID,
		GivenNames:      c.GivenNames,
		PaternalSurname: c.PaternalSurname,
		MaternalSurname: c.MaternalSurname,
		FullName:        c.FullName(),
		Email:           c.Email,
		Phone:           c.Phone,
		Source:          c.Source,
		CreatedAt:       c.CreatedAt,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req candidateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	candidate, err := h.service.Register(ctx, service.RegisterInput{
		NationalID:      req.NationalID,
		GivenNames:      req.GivenNames,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Email:           req.Email,
		Phone:           req.Phone,
		Source:          models.SourceRecruiter,
	})
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeInvalidInput) && !dErrors.Is(err, dErrors.CodeConflict) {
			h.logger.ErrorContext(ctx, "failed to register candidate",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toCandidateResponse(candidate))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidates, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list candidates",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	out := make([]candidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, toCandidateResponse(c))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	candidate, err := h.service.Get(ctx, candidateID)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load candidate",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

type duplicateCheckResponse struct {
	Duplicate bool                     `json:"duplicate"`
	Matches   []service.DuplicateMatch `json:"matches"`
}

func (h *Handler) handleDuplicateCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req candidateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	matches, err := h.service.FindDuplicates(ctx, match.Identity{
		NationalID:      req.NationalID,
		GivenNames:      req.GivenNames,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Email:           req.Email,
		Phone:           req.Phone,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "duplicate check failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if matches == nil {
		matches = []service.DuplicateMatch{}
	}

	shared.WriteJSON(w, http.StatusOK, duplicateCheckResponse{
		Duplicate: len(matches) > 0,
		Matches:   matches,
	})
}
