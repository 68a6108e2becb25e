package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireline/internal/application/models"
	applicationmemory "hireline/internal/application/store/memory"
	candidatemodels "hireline/internal/candidate/models"
	candidateservice "hireline/internal/candidate/service"
	candidatememory "hireline/internal/candidate/store/memory"
	postingmodels "hireline/internal/posting/models"
	postingservice "hireline/internal/posting/service"
	postingmemory "hireline/internal/posting/store/memory"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/platform/audit"
	auditmemory "hireline/pkg/platform/audit/store/memory"
	"hireline/pkg/requestcontext"
)

type fixture struct {
	applications *Service
	candidates   *candidateservice.Service
	postings     *postingservice.Service
	auditStore   *auditmemory.InMemoryStore
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditStore := auditmemory.NewInMemoryStore()
	auditor := audit.NewService(auditStore, logger)

	candidates := candidateservice.NewService(candidatememory.NewInMemoryStore(), auditor, nil, logger, candidateservice.Config{})
	postings := postingservice.NewService(postingmemory.NewInMemoryStore(), auditor, nil, logger)
	applications := NewService(applicationmemory.NewInMemoryStore(), candidates, postings, auditor, nil, logger, opts...)

	return &fixture{
		applications: applications,
		candidates:   candidates,
		postings:     postings,
		auditStore:   auditStore,
	}
}

func recruiterContext() context.Context {
	return requestcontext.WithActorID(context.Background(), id.AccountID(uuid.New()))
}

// openPosting creates a posting and opens it for applications.
func (f *fixture) openPosting(t *testing.T) *postingmodels.Posting {
	t.Helper()
	ctx := recruiterContext()
	posting, err := f.postings.Create(ctx, postingservice.CreateInput{Title: "Backend Engineer", Area: "Engineering"})
	require.NoError(t, err)
	posting, err = f.postings.Open(ctx, posting.ID)
	require.NoError(t, err)
	return posting
}

func submitInput(postingID id.PostingID) SubmitInput {
	return SubmitInput{
		PostingID:       postingID,
		NationalID:      "12345678",
		GivenNames:      "Juan Carlos",
		PaternalSurname: "Pérez",
		MaternalSurname: "García",
		Email:           "jcperez@mail.com",
		Phone:           "987654321",
	}
}

func TestSubmit_RegistersNewCandidate(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := context.Background()

	result, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)
	assert.False(t, result.AttachedToExisting)
	assert.Equal(t, candidatemodels.SourcePublicIntake, result.Candidate.Source)
	assert.Equal(t, models.StagePool, result.Application.Stage)
	assert.Equal(t, result.Candidate.ID, result.Application.CandidateID)
	assert.Equal(t, posting.ID, result.Application.PostingID)

	events, err := f.auditStore.ListByCandidate(ctx, result.Candidate.ID)
	require.NoError(t, err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(audit.EventApplicationSubmitted))
}

func TestSubmit_AttachesToScoredDuplicate(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := context.Background()

	registered, err := f.candidates.Register(ctx, candidateservice.RegisterInput{
		NationalID:      "12345678",
		GivenNames:      "Juan Carlos",
		PaternalSurname: "Pérez",
		MaternalSurname: "García",
		Email:           "jcperez@mail.com",
		Phone:           "987654321",
	})
	require.NoError(t, err)

	// Same person applying with a different national ID and a fresh email
	// alias. The score still clears the threshold on name and phone.
	input := submitInput(posting.ID)
	input.NationalID = "87654321"
	input.Email = "jcperez99@mail.com"

	result, err := f.applications.Submit(ctx, input)
	require.NoError(t, err)
	assert.True(t, result.AttachedToExisting)
	assert.Equal(t, registered.ID, result.Candidate.ID)
}

func TestSubmit_NationalIDCollisionFallsBackToExactLookup(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := context.Background()

	// Registered under the same national ID but every scored field differs,
	// so the duplicate scan stays below the threshold.
	registered, err := f.candidates.Register(ctx, candidateservice.RegisterInput{
		NationalID:      "12345678",
		GivenNames:      "Rosa Elvira",
		PaternalSurname: "Quispe",
		MaternalSurname: "Mamani",
		Email:           "requispe@otro.com",
		Phone:           "111222333",
	})
	require.NoError(t, err)

	result, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)
	assert.True(t, result.AttachedToExisting)
	assert.Equal(t, registered.ID, result.Candidate.ID)
}

func TestSubmit_PostingNotAccepting(t *testing.T) {
	f := newFixture(t)
	ctx := recruiterContext()

	draft, err := f.postings.Create(ctx, postingservice.CreateInput{Title: "Backend Engineer"})
	require.NoError(t, err)

	_, err = f.applications.Submit(context.Background(), submitInput(draft.ID))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestSubmit_SecondApplicationSamePosting(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := context.Background()

	_, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)

	_, err = f.applications.Submit(ctx, submitInput(posting.ID))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestMoveStage(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := recruiterContext()

	result, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)

	moved, err := f.applications.MoveStage(ctx, result.Application.ID, models.StageScreeningCall, "CV looked strong")
	require.NoError(t, err)
	assert.Equal(t, models.StageScreeningCall, moved.Stage)
	require.Len(t, moved.History, 1)
	assert.Equal(t, models.StagePool, moved.History[0].From)
	assert.Equal(t, models.KindAdvance, moved.History[0].Kind)
	assert.Equal(t, "CV looked strong", moved.History[0].Note)
	assert.NotEmpty(t, moved.History[0].ActorID)
}

func TestMoveStage_BackwardRejected(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := context.Background()

	result, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)

	_, err = f.applications.MoveStage(ctx, result.Application.ID, models.StageFirstInterview, "")
	require.NoError(t, err)

	_, err = f.applications.MoveStage(ctx, result.Application.ID, models.StageCVReceived, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestMoveStage_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.applications.MoveStage(context.Background(), id.ApplicationID(uuid.New()), models.StageCVReceived, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestReactivate(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := context.Background()

	result, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)

	_, err = f.applications.MoveStage(ctx, result.Application.ID, models.StageDiscarded, "not a fit right now")
	require.NoError(t, err)

	revived, err := f.applications.Reactivate(ctx, result.Application.ID, "new posting matches profile")
	require.NoError(t, err)
	assert.Equal(t, models.StagePool, revived.Stage)
	require.Len(t, revived.History, 2)
	assert.Equal(t, models.KindReactivation, revived.History[1].Kind)

	events, err := f.auditStore.ListByCandidate(ctx, result.Candidate.ID)
	require.NoError(t, err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(audit.EventApplicationReactivated))
}

func TestListBoard(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)
	ctx := context.Background()

	first, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)

	second, err := f.applications.Submit(ctx, SubmitInput{
		PostingID:       posting.ID,
		NationalID:      "87654321",
		GivenNames:      "Rosa Elvira",
		PaternalSurname: "Quispe",
		MaternalSurname: "Mamani",
		Email:           "requispe@otro.com",
		Phone:           "111222333",
	})
	require.NoError(t, err)

	_, err = f.applications.MoveStage(ctx, second.Application.ID, models.StageFirstInterview, "")
	require.NoError(t, err)

	columns, err := f.applications.ListBoard(ctx, posting.ID)
	require.NoError(t, err)
	require.Len(t, columns, len(models.BoardStages()))
	assert.Equal(t, models.BoardStages(), stagesOf(columns))

	byStage := make(map[models.Stage][]*models.Application)
	for _, column := range columns {
		byStage[column.Stage] = column.Applications
	}
	require.Len(t, byStage[models.StagePool], 1)
	assert.Equal(t, first.Application.ID, byStage[models.StagePool][0].ID)
	require.Len(t, byStage[models.StageFirstInterview], 1)
	assert.Equal(t, second.Application.ID, byStage[models.StageFirstInterview][0].ID)
	assert.Empty(t, byStage[models.StageHired])
}

func TestListBoard_UnknownPosting(t *testing.T) {
	f := newFixture(t)

	_, err := f.applications.ListBoard(context.Background(), id.PostingID(uuid.New()))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func stagesOf(columns []BoardColumn) []models.Stage {
	out := make([]models.Stage, 0, len(columns))
	for _, column := range columns {
		out = append(out, column.Stage)
	}
	return out
}

func TestSubmit_WritesRunThroughTxRunner(t *testing.T) {
	var calls int
	f := newFixture(t, WithTxRunner(func(ctx context.Context, fn func(ctx context.Context) error) error {
		calls++
		return fn(ctx)
	}))
	posting := f.openPosting(t)

	result, err := f.applications.Submit(context.Background(), submitInput(posting.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NotNil(t, result.Application)
}

func TestSubmit_TxRunnerFailureSurfaces(t *testing.T) {
	f := newFixture(t, WithTxRunner(func(ctx context.Context, fn func(ctx context.Context) error) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return errors.New("commit: connection reset")
	}))
	posting := f.openPosting(t)

	_, err := f.applications.Submit(context.Background(), submitInput(posting.ID))
	require.Error(t, err)
}

// TestSubmit_TimeFromContext pins every timestamp in one submission to the
// request clock.
func TestSubmit_TimeFromContext(t *testing.T) {
	f := newFixture(t)
	posting := f.openPosting(t)

	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	result, err := f.applications.Submit(ctx, submitInput(posting.ID))
	require.NoError(t, err)
	assert.Equal(t, at, result.Application.CreatedAt)
	assert.Equal(t, at, result.Candidate.CreatedAt)
}
