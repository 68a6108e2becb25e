package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hireline/pkg/domain-errors"
)

func TestParseStage(t *testing.T) {
	for _, stage := range BoardStages() {
		got, err := ParseStage(string(stage))
		require.NoError(t, err)
		assert.Equal(t, stage, got)
	}

	_, err := ParseStage("espresso_machine")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCanMove_ForwardOnly(t *testing.T) {
	require.NoError(t, CanMove(StagePool, StageCVReceived))
	require.NoError(t, CanMove(StageCVReceived, StageSecondInterview), "skipping stages is allowed")
	require.NoError(t, CanMove(StageManagementApproval, StageHired))

	err := CanMove(StageScreeningCall, StagePool)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestCanMove_ParkFromAnyActiveStage(t *testing.T) {
	for _, from := range []Stage{StagePool, StageScreeningCall, StageManagementApproval} {
		assert.NoError(t, CanMove(from, StageDiscarded), "from %s", from)
		assert.NoError(t, CanMove(from, StageWithdrawn), "from %s", from)
	}
}

func TestCanMove_ParkedOnlyReturnsToPool(t *testing.T) {
	require.NoError(t, CanMove(StageDiscarded, StagePool))
	require.NoError(t, CanMove(StageWithdrawn, StagePool))

	assert.Error(t, CanMove(StageDiscarded, StageFirstInterview))
	assert.Error(t, CanMove(StageWithdrawn, StageHired))
}

func TestCanMove_HiredIsTerminal(t *testing.T) {
	for _, to := range BoardStages() {
		if to == StageHired {
			continue
		}
		assert.Error(t, CanMove(StageHired, to), "to %s", to)
	}
}

func TestCanMove_SameStage(t *testing.T) {
	err := CanMove(StagePool, StagePool)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		from, to Stage
		want     ChangeKind
	}{
		{StagePool, StageCVReceived, KindAdvance},
		{StageCVReceived, StageScreeningCall, KindAdvance},
		{StageSecondInterview, StageManagementApproval, KindApproval},
		{StageManagementApproval, StageHired, KindApproval},
		{StageFirstInterview, StageDiscarded, KindRejection},
		{StagePool, StageWithdrawn, KindRejection},
		{StageDiscarded, StagePool, KindReactivation},
		{StageWithdrawn, StagePool, KindReactivation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
