package models

import (
	dErrors "hireline/pkg/domain-errors"
)

// Stage is a column on the recruitment board. Applications move forward
// through the active stages, may be parked in discarded or withdrawn at any
// point, and can return to the pool from there.
type Stage string

const (
	StagePool               Stage = "pool"
	StageCVReceived         Stage = "cv_received"
	StageScreeningCall      Stage = "screening_call"
	StageFirstInterview     Stage = "first_interview"
	StageSecondInterview    Stage = "second_interview"
	StageManagementApproval Stage = "management_approval"
	StageHired              Stage = "hired"

	// StageDiscarded holds applications the team rejected.
	StageDiscarded Stage = "discarded"
	// StageWithdrawn holds applications the candidate abandoned.
	StageWithdrawn Stage = "withdrawn"
)

// stageOrder positions the active stages on the board. Parked stages carry
// no position.
var stageOrder = map[Stage]int{
	StagePool:               0,
	StageCVReceived:         1,
	StageScreeningCall:      2,
	StageFirstInterview:     3,
	StageSecondInterview:    4,
	StageManagementApproval: 5,
	StageHired:              6,
}

// BoardStages lists every stage in board display order.
func BoardStages() []Stage {
	return []Stage{
		StagePool,
		StageCVReceived,
		StageScreeningCall,
		StageFirstInterview,
		StageSecondInterview,
		StageManagementApproval,
		StageHired,
		StageDiscarded,
		StageWithdrawn,
	}
}

// ParseStage validates a stage received at a trust boundary.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if !s.valid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown stage")
	}
	return s, nil
}

func (s Stage) valid() bool {
	if _, ok := stageOrder[s]; ok {
		return true
	}
	return s == StageDiscarded || s == StageWithdrawn
}

// active reports whether the stage sits in the forward pipeline.
func (s Stage) active() bool {
	_, ok := stageOrder[s]
	return ok
}

// parked reports whether the stage holds applications out of the pipeline.
func (s Stage) parked() bool {
	return s == StageDiscarded || s == StageWithdrawn
}

// ChangeKind classifies a stage move for history and reporting.
type ChangeKind string

const (
	// KindAdvance moves an application forward through the pipeline.
	KindAdvance ChangeKind = "advance"
	// KindApproval enters the management approval gate or hires.
	KindApproval ChangeKind = "approval"
	// KindRejection parks the application in discarded or withdrawn.
	KindRejection ChangeKind = "rejection"
	// KindReactivation returns a parked application to the pool.
	KindReactivation ChangeKind = "reactivation"
)

// CanMove validates a stage transition without applying it.
//
// Rules: active stages move forward only, or park. Parked stages return to
// the pool only. Hired is terminal.
func CanMove(from, to Stage) error {
	if !to.valid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown stage")
	}
	if from == to {
		return dErrors.New(dErrors.CodeInvariantViolation, "application is already in that stage")
	}
	if from == StageHired {
		return dErrors.New(dErrors.CodeInvariantViolation, "hired applications cannot move")
	}
	if from.parked() {
		if to != StagePool {
			return dErrors.New(dErrors.CodeInvariantViolation, "parked applications can only return to the pool")
		}
		return nil
	}
	if to.parked() {
		return nil
	}
	if stageOrder[to] < stageOrder[from] {
		return dErrors.New(dErrors.CodeInvariantViolation, "applications cannot move backward through the pipeline")
	}
	return nil
}

// Classify labels a move already validated by CanMove.
func Classify(from, to Stage) ChangeKind {
	switch {
	case to.parked():
		return KindRejection
	case from.parked():
		return KindReactivation
	case to == StageManagementApproval || to == StageHired:
		return KindApproval
	default:
		return KindAdvance
	}
}
