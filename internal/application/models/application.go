// Package models holds the application aggregate: one candidate's run at
// one posting, tracked as a position on the recruitment board.
package models

import (
	"time"

	"github.com/google/uuid"

	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
)

// StageChange is one entry in an application's movement history.
type StageChange struct {
	From    Stage      `json:"from"`
	To      Stage      `json:"to"`
	Kind    ChangeKind `json:"kind"`
	Note    string     `json:"note,omitempty"`
	ActorID string     `json:"actor_id,omitempty"`
	At      time.Time  `json:"at"`
}

// Application links a candidate to a posting and tracks its board position.
// One candidate holds at most one application per posting.
type Application struct {
	ID          id.ApplicationID
	CandidateID id.CandidateID
	PostingID   id.PostingID
	Stage       Stage
	History     []StageChange
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewApplication builds an application entering the board at the pool stage.
func NewApplication(candidateID id.CandidateID, postingID id.PostingID, now time.Time) (*Application, error) {
	if candidateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "application requires a candidate")
	}
	if postingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "application requires a posting")
	}

	return &Application{
		ID:          id.ApplicationID(uuid.New()),
		CandidateID: candidateID,
		PostingID:   postingID,
		Stage:       StagePool,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanMoveTo validates moving this application to the target stage.
func (a *Application) CanMoveTo(to Stage) error {
	return CanMove(a.Stage, to)
}

// ApplyMove transitions the application and records the change. Call
// CanMoveTo first. Returns the recorded change for auditing.
func (a *Application) ApplyMove(to Stage, note, actorID string, now time.Time) StageChange {
	change := StageChange{
		From:    a.Stage,
		To:      to,
		Kind:    Classify(a.Stage, to),
		Note:    note,
		ActorID: actorID,
		At:      now,
	}
	a.History = append(a.History, change)
	a.Stage = to
	a.UpdatedAt = now
	return change
}
