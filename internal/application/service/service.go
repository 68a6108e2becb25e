// Package service implements the application pipeline: public intake with
// duplicate gating, board listing, and stage movement.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hireline/internal/application/models"
	"hireline/internal/application/store"
	candidatemodels "hireline/internal/candidate/models"
	candidateservice "hireline/internal/candidate/service"
	"hireline/internal/match"
	"hireline/internal/platform/metrics"
	postingmodels "hireline/internal/posting/models"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/platform/audit"
	"hireline/pkg/platform/sentinel"
	"hireline/pkg/requestcontext"
)

// CandidateDirectory is the slice of the candidate service the pipeline
// needs: duplicate scanning decides whether intake attaches to an existing
// candidate or registers a new one.
type CandidateDirectory interface {
	Register(ctx context.Context, input candidateservice.RegisterInput) (*candidatemodels.Candidate, error)
	Get(ctx context.Context, candidateID id.CandidateID) (*candidatemodels.Candidate, error)
	GetByNationalID(ctx context.Context, nationalID string) (*candidatemodels.Candidate, error)
	FindDuplicates(ctx context.Context, identity match.Identity) ([]candidateservice.DuplicateMatch, error)
}

// PostingDirectory is the slice of the posting service the pipeline needs.
type PostingDirectory interface {
	Get(ctx context.Context, postingID id.PostingID) (*postingmodels.Posting, error)
}

// TxRunner executes fn atomically. The default runs fn directly; the
// postgres wiring runs it inside a database transaction shared through the
// context, so the stores and the audit trail commit together.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service coordinates application intake and board movement.
type Service struct {
	store      store.Store
	candidates CandidateDirectory
	postings   PostingDirectory
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	runTx      TxRunner
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithTxRunner makes intake run its writes through the given runner.
func WithTxRunner(run TxRunner) Option {
	return func(s *Service) { s.runTx = run }
}

func NewService(
	st store.Store,
	candidates CandidateDirectory,
	postings PostingDirectory,
	auditor audit.Emitter,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:      st,
		candidates: candidates,
		postings:   postings,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput carries the public application form fields.
type SubmitInput struct {
	PostingID       id.PostingID
	NationalID      string
	GivenNames      string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string
}

// SubmitResult reports what intake did with the submission.
type SubmitResult struct {
	Application *models.Application
	Candidate   *candidatemodels.Candidate
	// AttachedToExisting is true when the duplicate scan matched the
	// submission to a candidate already in the pool.
	AttachedToExisting bool
}

// Submit processes a public application. The submission is scored against
// the talent pool first: a probable duplicate attaches to the matched
// candidate instead of creating a second record.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	posting, err := s.postings.Get(ctx, input.PostingID)
	if err != nil {
		return nil, err
	}
	if !posting.AcceptsApplications() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "posting is not accepting applications")
	}

	// Candidate resolution, the application row, and the compliance trail
	// commit or roll back as one unit.
	var result *SubmitResult
	err = s.runTx(ctx, func(ctx context.Context) error {
		candidate, attached, err := s.resolveCandidate(ctx, input)
		if err != nil {
			return err
		}

		application, err := models.NewApplication(candidate.ID, posting.ID, requestcontext.Now(ctx))
		if err != nil {
			return err
		}

		if err := s.store.Create(ctx, application); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "candidate already applied to this posting")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not store application")
		}

		if err := s.auditor.Emit(ctx, audit.Event{
			CandidateID: candidate.ID,
			Subject:     application.ID.String(),
			Action:      string(audit.EventApplicationSubmitted),
			Detail:      fmt.Sprintf("posting=%s attached_to_existing=%t", posting.ID, attached),
			RequestID:   requestcontext.RequestID(ctx),
			ClientIP:    requestcontext.ClientIP(ctx),
			Device:      requestcontext.Device(ctx),
		}); err != nil {
			return err
		}

		result = &SubmitResult{Application: application, Candidate: candidate, AttachedToExisting: attached}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncApplicationsSubmitted()
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", result.Application.ID,
		"posting_id", posting.ID,
		"candidate_id", result.Candidate.ID,
		"attached_to_existing", result.AttachedToExisting,
	)
	return result, nil
}

// resolveCandidate finds or creates the candidate behind a submission.
// Attachment order: best duplicate match at or above the threshold wins,
// then an exact national ID hit, then a fresh registration.
func (s *Service) resolveCandidate(ctx context.Context, input SubmitInput) (*candidatemodels.Candidate, bool, error) {
	matches, err := s.candidates.FindDuplicates(ctx, match.Identity{
		NationalID:      input.NationalID,
		GivenNames:      input.GivenNames,
		PaternalSurname: input.PaternalSurname,
		MaternalSurname: input.MaternalSurname,
		Email:           input.Email,
		Phone:           input.Phone,
	})
	if err != nil {
		return nil, false, err
	}
	if len(matches) > 0 {
		candidate, err := s.candidates.Get(ctx, matches[0].CandidateID)
		if err != nil {
			return nil, false, err
		}
		return candidate, true, nil
	}

	candidate, err := s.candidates.Register(ctx, candidateservice.RegisterInput{
		NationalID:      input.NationalID,
		GivenNames:      input.GivenNames,
		PaternalSurname: input.PaternalSurname,
		MaternalSurname: input.MaternalSurname,
		Email:           input.Email,
		Phone:           input.Phone,
		Source:          candidatemodels.SourcePublicIntake,
	})
	if err == nil {
		return candidate, false, nil
	}

	// The scan can miss a same-ID candidate whose other fields changed: the
	// national ID carries zero weight by default. The unique index still
	// catches it, so fall back to the exact ID lookup.
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		existing, lookupErr := s.candidates.GetByNationalID(ctx, input.NationalID)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		return existing, true, nil
	}
	return nil, false, err
}

// Get returns one application by ID.
func (s *Service) Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	application, err := s.store.Get(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load application")
	}
	return application, nil
}

// MoveStage moves an application to the target stage, recording history and
// classifying the change.
func (s *Service) MoveStage(ctx context.Context, applicationID id.ApplicationID, to models.Stage, note string) (*models.Application, error) {
	application, err := s.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if err := application.CanMoveTo(to); err != nil {
		return nil, err
	}
	change := application.ApplyMove(to, note, actorID(ctx), requestcontext.Now(ctx))

	if err := s.store.Update(ctx, application); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not update application")
	}

	event := audit.EventApplicationStageMoved
	if change.Kind == models.KindReactivation {
		event = audit.EventApplicationReactivated
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		CandidateID: application.CandidateID,
		Subject:     application.ID.String(),
		Action:      string(event),
		Detail:      fmt.Sprintf("%s->%s kind=%s", change.From, change.To, change.Kind),
		RequestID:   requestcontext.RequestID(ctx),
		ActorID:     change.ActorID,
		ClientIP:    requestcontext.ClientIP(ctx),
	})

	s.metrics.IncStageMove(string(change.Kind))
	s.logger.InfoContext(ctx, "application moved",
		"application_id", application.ID,
		"from", change.From,
		"to", change.To,
		"kind", change.Kind,
	)
	return application, nil
}

// Reactivate returns a parked application to the pool.
func (s *Service) Reactivate(ctx context.Context, applicationID id.ApplicationID, note string) (*models.Application, error) {
	return s.MoveStage(ctx, applicationID, models.StagePool, note)
}

// BoardColumn is one column of the recruitment board.
type BoardColumn struct {
	Stage        models.Stage
	Applications []*models.Application
}

// ListBoard returns the posting's applications grouped into board columns,
// every stage present even when empty.
func (s *Service) ListBoard(ctx context.Context, postingID id.PostingID) ([]BoardColumn, error) {
	if _, err := s.postings.Get(ctx, postingID); err != nil {
		return nil, err
	}

	applications, err := s.store.ListByPosting(ctx, postingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list applications")
	}

	grouped := make(map[models.Stage][]*models.Application)
	for _, application := range applications {
		grouped[application.Stage] = append(grouped[application.Stage], application)
	}

	stages := models.BoardStages()
	columns := make([]BoardColumn, 0, len(stages))
	for _, stage := range stages {
		applicationsInStage := grouped[stage]
		if applicationsInStage == nil {
			applicationsInStage = []*models.Application{}
		}
		columns = append(columns, BoardColumn{Stage: stage, Applications: applicationsInStage})
	}
	return columns, nil
}

func actorID(ctx context.Context) string {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return ""
	}
	return actor.String()
}
