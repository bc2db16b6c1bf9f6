package models

import (
	"math"
	"time"
)

// Round is one lottery instance, from start to payout. Rounds are never deleted.
type Round struct {
	ID                 uint32       `json:"id"`
	Winner             string       `json:"winner"`
	TicketsSold        uint32       `json:"tickets_sold"`
	PlayerCount        uint32       `json:"player_count"`
	WinningTicketIndex uint32       `json:"winning_ticket_index"`
	PooledAmount       Amount       `json:"pooled_amount"`
	StartTime          time.Time    `json:"start_time"`
	EndTime            time.Time    `json:"end_time"`
	Halted             bool         `json:"halted"`
	Settlement         *Settlement  `json:"settlement,omitempty"`
	Ledger             TicketLedger `json:"-"`
}

// TimePrecision is the resolution every stored time is kept at. BSON dates
// carry milliseconds, so windows are cut to that before they are handed out.
const TimePrecision = time.Millisecond

// Timestamp returns t in UTC truncated to TimePrecision
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(TimePrecision)
}

// Settlement records how a round's pool was split
type Settlement struct {
	WinnerAmount   Amount    `json:"winner_amount" bson:"winner_amount"`
	OperatorAmount Amount    `json:"operator_amount" bson:"operator_amount"`
	RetainedAmount Amount    `json:"retained_amount" bson:"retained_amount"`
	SettledAt      time.Time `json:"settled_at" bson:"settled_at"`
}

// NewRound creates an empty round whose window opens at now
func NewRound(id uint32, now time.Time, duration time.Duration) *Round {
	return &Round{
		ID:        id,
		StartTime: Timestamp(now),
		EndTime:   Timestamp(now.Add(duration)),
		Ledger:    NewTicketLedger(),
	}
}

// Restart opens a new window for the round. Tickets and pool sold in the
// previous window stay in place.
func (r *Round) Restart(now time.Time, duration time.Duration) {
	r.StartTime = Timestamp(now)
	r.EndTime = Timestamp(now.Add(duration))
}

// IsOpen reports whether tickets can still be bought at now
func (r *Round) IsOpen(now time.Time) bool {
	return now.Before(r.EndTime)
}

// HasWinner reports whether a winner has been drawn
func (r *Round) HasWinner() bool {
	return r.Winner != ""
}

// BuyTickets records a purchase of count tickets by player paying amount.
// Callers validate window and payment first; this only guards ledger limits.
func (r *Round) BuyTickets(player string, count uint32, amount Amount) error {
	if count == 0 {
		return NewError(ErrorKindInvalidArgument, "ticket count must be positive")
	}
	if uint64(r.TicketsSold)+uint64(count) > math.MaxUint32 {
		return NewError(ErrorKindInvalidArgument, "ticket count exceeds round capacity")
	}
	pool, err := r.PooledAmount.Add(amount)
	if err != nil {
		return NewError(ErrorKindInvalidArgument, "pooled amount overflow")
	}

	isNew, err := r.Ledger.AssignTickets(player, r.TicketsSold, count)
	if err != nil {
		return NewError(ErrorKindConsistency, "ticket ledger out of sync: %v", err)
	}
	if isNew {
		r.PlayerCount++
	}
	r.TicketsSold += count
	r.PooledAmount = pool
	return nil
}

// MeetsParticipation reports whether the round sold enough tickets to enough players
func (r *Round) MeetsParticipation(minTickets, minPlayers uint32) bool {
	return r.TicketsSold >= minTickets && r.PlayerCount >= minPlayers
}

// DrawWinner picks the ticket at roll modulo tickets sold and records its owner
func (r *Round) DrawWinner(roll uint64) error {
	if r.TicketsSold == 0 {
		return NewError(ErrorKindConsistency, "round %d has no tickets to draw", r.ID)
	}
	if err := r.CheckLedger(); err != nil {
		return err
	}
	index := uint32(roll % uint64(r.TicketsSold))
	owner, ok := r.Ledger.OwnerOf(index)
	if !ok {
		return NewError(ErrorKindConsistency, "ticket %d of round %d has no owner", index, r.ID)
	}
	r.WinningTicketIndex = index
	r.Winner = owner
	return nil
}

// CheckLedger verifies the round's counters against its ticket ledger
func (r *Round) CheckLedger() error {
	if held := r.Ledger.Len(); held != r.TicketsSold {
		return NewError(ErrorKindConsistency, "round %d sold %d tickets but its ledger holds %d", r.ID, r.TicketsSold, held)
	}
	if players := r.Ledger.PlayerCount(); players != r.PlayerCount {
		return NewError(ErrorKindConsistency, "round %d counts %d players but its ledger holds %d", r.ID, r.PlayerCount, players)
	}
	return nil
}

// Settle splits the pool: half to the winner, half of the remainder to the
// operator, the rest stays in custody. Both halvings truncate.
func (r *Round) Settle(now time.Time) (*Settlement, error) {
	winnerShare := r.PooledAmount.Half()
	operatorShare := winnerShare.Half()

	paid, err := winnerShare.Add(operatorShare)
	if err != nil {
		return nil, err
	}
	retained, err := r.PooledAmount.Sub(paid)
	if err != nil {
		return nil, err
	}

	r.Settlement = &Settlement{
		WinnerAmount:   winnerShare,
		OperatorAmount: operatorShare,
		RetainedAmount: retained,
		SettledAt:      now,
	}
	return r.Settlement, nil
}

// Clone returns a deep copy of the round
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	c := *r
	c.Ledger = r.Ledger.Clone()
	if r.Settlement != nil {
		s := *r.Settlement
		c.Settlement = &s
	}
	return &c
}
