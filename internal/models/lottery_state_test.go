package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLotteryState(t *testing.T) {
	s := DefaultLotteryState()
	assert.Equal(t, PhaseInactive, s.Phase)
	assert.True(t, s.TicketPrice.Equal(DefaultTicketPrice))
	assert.Equal(t, uint32(0), s.CurrentRoundID)
}

func TestLotteryStateChecks(t *testing.T) {
	s := &LotteryState{Phase: PhaseIdle, Operator: "op.near"}

	assert.NoError(t, s.CheckPhase(PhaseIdle))
	assert.True(t, errors.Is(s.CheckPhase(PhaseActive), ErrPhaseViolation))

	assert.NoError(t, s.CheckOperator("op.near"))
	assert.True(t, errors.Is(s.CheckOperator("alice.near"), ErrUnauthorized))
	assert.True(t, errors.Is(s.CheckOperator(""), ErrUnauthorized))
}

func TestPhaseText(t *testing.T) {
	data, err := json.Marshal(map[string]Phase{"phase": PhasePayout})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"PAYOUT"}`, string(data))

	p, err := ParsePhase("active")
	require.NoError(t, err)
	assert.Equal(t, PhaseActive, p)

	_, err = ParsePhase("closed")
	assert.Error(t, err)
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("buy: %w", NewError(ErrorKindWindowClosed, "round 3 closed"))

	assert.True(t, errors.Is(err, ErrWindowClosed))
	assert.False(t, errors.Is(err, ErrWindowOpen))
	assert.Equal(t, ErrorKindWindowClosed, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	assert.Equal(t, "buy: round 3 closed", err.Error())
	assert.Equal(t, "not found", ErrNotFound.Error())
}
