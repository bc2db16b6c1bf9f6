package models

import "time"

// LotteryState is the global singleton: phase, configuration and the round pointer
type LotteryState struct {
	Phase          Phase     `json:"phase"`
	Operator       string    `json:"operator"`
	TicketPrice    Amount    `json:"ticket_price"`
	CurrentRoundID uint32    `json:"current_round_id"`
	Rollover       bool      `json:"rollover"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultLotteryState is what a store returns before initialization
func DefaultLotteryState() *LotteryState {
	return &LotteryState{
		Phase:       PhaseInactive,
		TicketPrice: DefaultTicketPrice,
	}
}

// CheckPhase fails with ErrorKindPhaseViolation unless the lottery is in want
func (s *LotteryState) CheckPhase(want Phase) error {
	if s.Phase != want {
		return NewError(ErrorKindPhaseViolation, "lottery is %s, expected %s", s.Phase, want)
	}
	return nil
}

// CheckOperator fails with ErrorKindUnauthorized unless caller is the operator
func (s *LotteryState) CheckOperator(caller string) error {
	if caller == "" || s.Operator == "" || caller != s.Operator {
		return NewError(ErrorKindUnauthorized, "caller is not the operator")
	}
	return nil
}

// Clone returns a copy of the state
func (s *LotteryState) Clone() *LotteryState {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
