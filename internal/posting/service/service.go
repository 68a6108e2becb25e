// Package service implements the posting lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hireline/internal/platform/metrics"
	"hireline/internal/posting/models"
	"hireline/internal/posting/store"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/platform/audit"
	"hireline/pkg/platform/sentinel"
	"hireline/pkg/requestcontext"
)

// Service coordinates posting creation and lifecycle transitions.
type Service struct {
	store   store.Store
	auditor audit.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(st store.Store, auditor audit.Emitter, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{store: st, auditor: auditor, metrics: m, logger: logger}
}

// CreateInput carries the fields a recruiter submits for a new posting.
type CreateInput struct {
	Title       string
	Description string
	Area        string
	Location    string
}

// Create persists a new draft posting owned by the authenticated recruiter.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Posting, error) {
	posting, err := models.NewPosting(
		input.Title,
		input.Description,
		input.Area,
		input.Location,
		requestcontext.ActorID(ctx),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, posting); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not store posting")
	}

	s.emit(ctx, posting, audit.EventPostingCreated)
	s.logger.InfoContext(ctx, "posting created",
		"posting_id", posting.ID,
		"title", posting.Title,
	)
	return posting, nil
}

// Get returns one posting by ID.
func (s *Service) Get(ctx context.Context, postingID id.PostingID) (*models.Posting, error) {
	posting, err := s.store.Get(ctx, postingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "posting not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load posting")
	}
	return posting, nil
}

// List returns all postings in creation order.
func (s *Service) List(ctx context.Context) ([]*models.Posting, error) {
	postings, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list postings")
	}
	return postings, nil
}

// Open starts accepting applications on a draft or suspended posting.
func (s *Service) Open(ctx context.Context, postingID id.PostingID) (*models.Posting, error) {
	return s.transition(ctx, postingID, audit.EventPostingOpened,
		func(p *models.Posting) error { return p.CanOpen() },
		(*models.Posting).ApplyOpen,
	)
}

// Suspend pauses intake on an open posting.
func (s *Service) Suspend(ctx context.Context, postingID id.PostingID) (*models.Posting, error) {
	return s.transition(ctx, postingID, audit.EventPostingSuspended,
		func(p *models.Posting) error { return p.CanSuspend() },
		(*models.Posting).ApplySuspend,
	)
}

// Close finishes the posting's process.
func (s *Service) Close(ctx context.Context, postingID id.PostingID) (*models.Posting, error) {
	return s.transition(ctx, postingID, audit.EventPostingClosed,
		func(p *models.Posting) error { return p.CanClose() },
		(*models.Posting).ApplyClose,
	)
}

// Cancel aborts the posting before completion.
func (s *Service) Cancel(ctx context.Context, postingID id.PostingID) (*models.Posting, error) {
	return s.transition(ctx, postingID, audit.EventPostingCancelled,
		func(p *models.Posting) error { return p.CanCancel() },
		(*models.Posting).ApplyCancel,
	)
}

func (s *Service) transition(
	ctx context.Context,
	postingID id.PostingID,
	event audit.AuditEvent,
	can func(*models.Posting) error,
	apply func(*models.Posting, time.Time),
) (*models.Posting, error) {
	posting, err := s.Get(ctx, postingID)
	if err != nil {
		return nil, err
	}

	if err := can(posting); err != nil {
		return nil, err
	}
	apply(posting, requestcontext.Now(ctx))

	if err := s.store.Update(ctx, posting); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "posting not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not update posting")
	}

	s.emit(ctx, posting, event)
	s.metrics.IncPostingTransition(string(posting.Status))
	s.logger.InfoContext(ctx, "posting transitioned",
		"posting_id", posting.ID,
		"status", posting.Status,
	)
	return posting, nil
}

func (s *Service) emit(ctx context.Context, posting *models.Posting, event audit.AuditEvent) {
	// Posting events are operational; emit failures degrade to a log line
	// inside the audit service and never fail the transition.
	_ = s.auditor.Emit(ctx, audit.Event{
		Subject:   posting.ID.String(),
		Action:    string(event),
		Detail:    string(posting.Status),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
}

func actorID(ctx context.Context) string {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return ""
	}
	return actor.String()
}
