// Package handler exposes the recruitment board and the public intake
// endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hireline/internal/application/models"
	"hireline/internal/application/service"
	"hireline/internal/transport/http/shared"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/requestcontext"
)

// Service defines the application operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, input service.SubmitInput) (*service.SubmitResult, error)
	Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	MoveStage(ctx context.Context, applicationID id.ApplicationID, to models.Stage, note string) (*models.Application, error)
	Reactivate(ctx context.Context, applicationID id.ApplicationID, note string) (*models.Application, error)
	ListBoard(ctx context.Context, postingID id.PostingID) ([]service.BoardColumn, error)
}

// Handler handles application endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the recruiter-only board routes. The caller wraps them in
// the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/board/{postingID}", h.handleBoard)
	r.Get("/applications/{applicationID}", h.handleGet)
	r.Post("/applications/{applicationID}/move", h.handleMove)
	r.Post("/applications/{applicationID}/reactivate", h.handleReactivate)
}

// RegisterPublic mounts the unauthenticated intake route candidates use to
// apply from the careers page.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/apply/{postingID}", h.handleApply)
}

type stageChangeResponse struct {
	From    models.Stage      `json:"from"`
	To      models.Stage      `json:"to"`
	Kind    models.ChangeKind `json:"kind"`
	Note    string            `json:"note,omitempty"`
	ActorID string            `json:"actor_id,omitempty"`
	At      time.Time         `json:"at"`
}

type applicationResponse struct {
	ID          string                `json:"id"`
	CandidateID string                `json:"candidate_id"`
	PostingID   string                `json:"posting_id"`
	Stage       models.Stage          `json:"stage"`
	History     []stageChangeResponse `json:"history"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func toApplicationResponse(a *models.Application) applicationResponse {
	history := make([]stageChangeResponse, 0, len(a.History))
	for _, change := range a.History {
		history = append(history, stageChangeResponse{
			From:    change.From,
			To:      change.To,
			Kind:    change.Kind,
			Note:    change.Note,
			ActorID: change.ActorID,
			At:      change.At,
		})
	}
	return applicationResponse{
		ID:          a.ID.String(),
		CandidateID: a.CandidateID.String(),
		PostingID:   a.PostingID.String(),
		Stage:       a.Stage,
		History:     history,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type applyRequest struct {
	NationalID      string `json:"national_id"`
	GivenNames      string `json:"given_names"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
}

type applyResponse struct {
	Application applicationResponse `json:"application"`
	CandidateID string              `json:"candidate_id"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postingID, err := id.ParsePostingID(chi.URLParam(r, "postingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req applyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.Submit(ctx, service.SubmitInput{
		PostingID:       postingID,
		NationalID:      req.NationalID,
		GivenNames:      req.GivenNames,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Email:           req.Email,
		Phone:           req.Phone,
	})
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeInvalidInput) &&
			!dErrors.Is(err, dErrors.CodeConflict) &&
			!dErrors.Is(err, dErrors.CodeInvariantViolation) &&
			!dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to submit application",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	// Whether the submission attached to an existing candidate stays
	// internal; the careers page only needs the created application.
	shared.WriteJSON(w, http.StatusCreated, applyResponse{
		Application: toApplicationResponse(result.Application),
		CandidateID: result.Candidate.ID.String(),
	})
}

type boardColumnResponse struct {
	Stage        models.Stage          `json:"stage"`
	Applications []applicationResponse `json:"applications"`
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postingID, err := id.ParsePostingID(chi.URLParam(r, "postingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	columns, err := h.service.ListBoard(ctx, postingID)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to list board",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	out := make([]boardColumnResponse, 0, len(columns))
	for _, column := range columns {
		applications := make([]applicationResponse, 0, len(column.Applications))
		for _, application := range column.Applications {
			applications = append(applications, toApplicationResponse(application))
		}
		out = append(out, boardColumnResponse{Stage: column.Stage, Applications: applications})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	application, err := h.service.Get(ctx, applicationID)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load application",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toApplicationResponse(application))
}

type moveRequest struct {
	Stage string `json:"stage"`
	Note  string `json:"note"`
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req moveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	stage, err := models.ParseStage(req.Stage)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	application, err := h.service.MoveStage(ctx, applicationID, stage, req.Note)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) && !dErrors.Is(err, dErrors.CodeInvariantViolation) {
			h.logger.ErrorContext(ctx, "failed to move application",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toApplicationResponse(application))
}

type reactivateRequest struct {
	Note string `json:"note"`
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req reactivateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	application, err := h.service.Reactivate(ctx, applicationID, req.Note)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) && !dErrors.Is(err, dErrors.CodeInvariantViolation) {
			h.logger.ErrorContext(ctx, "failed to reactivate application",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toApplicationResponse(application))
}
