// Package handler exposes the token endpoint recruiters log in through.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hireline/internal/account/service"
	"hireline/internal/transport/http/shared"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/requestcontext"
)

// Service defines the account operations the handler depends on.
type Service interface {
	Authenticate(ctx context.Context, email, password string) (*service.Token, error)
}

// Handler handles authentication endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the public token route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/token", h.handleToken)
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	token, err := h.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeUnauthorized) {
			h.logger.ErrorContext(ctx, "authentication failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, token)
}
