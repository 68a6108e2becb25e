package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "hireline/pkg/domain"
	"hireline/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the account it belongs to.
type TokenValidator interface {
	ValidateToken(tokenString string) (id.AccountID, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated account on the context for downstream handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				unauthorized(w, r, logger, "missing or malformed Authorization header", nil)
				return
			}

			account, err := validator.ValidateToken(token)
			if err != nil {
				unauthorized(w, r, logger, "invalid or expired token", err)
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string, err error) {
	ctx := r.Context()
	attrs := []any{
		"reason", reason,
		"path", r.URL.Path,
		"request_id", requestcontext.RequestID(ctx),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	logger.WarnContext(ctx, "unauthorized access", attrs...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, werr := w.Write([]byte(`{"error":"unauthorized","error_description":"` + reason + `"}`)); werr != nil {
		logger.ErrorContext(ctx, "failed to write unauthorized response",
			"error", werr,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
