// Package service implements recruiter authentication.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hireline/internal/account/models"
	"hireline/internal/account/store"
	jwttoken "hireline/internal/jwt_token"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/platform/audit"
	"hireline/pkg/platform/secrets"
	"hireline/pkg/platform/sentinel"
	"hireline/pkg/requestcontext"
)

// Service authenticates recruiter accounts and issues access tokens.
type Service struct {
	store    store.Store
	tokens   *jwttoken.JWTService
	auditor  audit.Emitter
	logger   *slog.Logger
	tokenTTL time.Duration
}

func NewService(st store.Store, tokens *jwttoken.JWTService, auditor audit.Emitter, logger *slog.Logger, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Service{
		store:    st,
		tokens:   tokens,
		auditor:  auditor,
		logger:   logger,
		tokenTTL: tokenTTL,
	}
}

// Token is an issued access token with its validity window.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Authenticate verifies credentials and issues a bearer token. Lookup and
// verification failures collapse into one unauthorized error so responses
// don't reveal whether the email exists.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Token, error) {
	email = models.NormalizeEmail(email)

	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.rejectLogin(ctx, email, "unknown email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load account")
	}

	if err := secrets.Verify(password, account.PasswordHash); err != nil {
		return nil, s.rejectLogin(ctx, email, "password mismatch")
	}

	signed, err := s.tokens.GenerateAccessToken(account.ID, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue token")
	}

	_ = s.auditor.Emit(ctx, audit.Event{
		Subject:   email,
		Action:    string(audit.EventLoginSucceeded),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   account.ID.String(),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	})
	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID)

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}

func (s *Service) rejectLogin(ctx context.Context, email, reason string) error {
	_ = s.auditor.Emit(ctx, audit.Event{
		Subject:   email,
		Action:    string(audit.EventLoginFailed),
		Detail:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	})
	s.logger.WarnContext(ctx, "login failed", "email", email, "reason", reason)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// Bootstrap ensures the configured admin account exists. An empty password
// generates one and logs it once so a fresh deployment can be entered.
func (s *Service) Bootstrap(ctx context.Context, email, password string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not check admin account")
	}

	generated := false
	if password == "" {
		var err error
		password, err = secrets.Generate()
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not generate admin password")
		}
		generated = true
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return err
	}
	account, err := models.NewAccount(email, hash, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := s.store.Create(ctx, account); err != nil {
		// Another replica may have seeded it first.
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not create admin account")
	}

	if generated {
		s.logger.WarnContext(ctx, "admin account seeded with generated password",
			"email", email,
			"password", password,
		)
	} else {
		s.logger.InfoContext(ctx, "admin account seeded", "email", email)
	}
	return nil
}
