package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a lifecycle event
type EventKind string

const (
	EventLotteryInitiated EventKind = "LOTTERY_INITIATED"
	EventRoundStarted     EventKind = "ROUND_STARTED"
	EventTicketsPurchased EventKind = "TICKETS_PURCHASED"
	EventWinnerDrawn      EventKind = "WINNER_DRAWN"
	EventRoundRolledOver  EventKind = "ROUND_ROLLED_OVER"
	EventRoundHalted      EventKind = "ROUND_HALTED"
	EventPayoutSettled    EventKind = "PAYOUT_SETTLED"
	EventPriceUpdated     EventKind = "TICKET_PRICE_UPDATED"
)

// Event is an entry in the lifecycle log
type Event struct {
	ID        string            `json:"id" bson:"_id"`
	Kind      EventKind         `json:"kind" bson:"kind"`
	RoundID   uint32            `json:"round_id" bson:"round_id"`
	Caller    string            `json:"caller" bson:"caller"`
	Message   string            `json:"message" bson:"message"`
	Details   map[string]string `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}

// NewEvent creates a new Event stamped at now
func NewEvent(kind EventKind, roundID uint32, caller, message string, now time.Time) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		RoundID:   roundID,
		Caller:    caller,
		Message:   message,
		CreatedAt: now,
	}
}

// With adds a detail to the event
func (e *Event) With(key, value string) *Event {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}
