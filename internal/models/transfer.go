package models

import (
	"time"

	"github.com/google/uuid"
)

// TransferKind identifies who a payout transfer is for
type TransferKind string

const (
	TransferKindWinner   TransferKind = "WINNER"
	TransferKindOperator TransferKind = "OPERATOR"
)

// TransferStatus represents the delivery status of a payout transfer
type TransferStatus string

const (
	TransferStatusPending TransferStatus = "PENDING"
	TransferStatusSent    TransferStatus = "SENT"
	// TransferStatusConfirmed means the gateway reported the transfer as settled
	TransferStatusConfirmed TransferStatus = "CONFIRMED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// Transfer is an outgoing payment written when a round is settled
type Transfer struct {
	ID        string         `json:"id" bson:"_id"`
	RoundID   uint32         `json:"round_id" bson:"round_id"`
	Recipient string         `json:"recipient" bson:"recipient"`
	Kind      TransferKind   `json:"kind" bson:"kind"`
	Amount    Amount         `json:"amount" bson:"amount"`
	Status    TransferStatus `json:"status" bson:"status"`
	Reference string         `json:"reference,omitempty" bson:"reference,omitempty"`
	Error     string         `json:"error,omitempty" bson:"error,omitempty"`
	Attempts  int            `json:"attempts" bson:"attempts"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// NewTransfer creates a pending transfer
func NewTransfer(roundID uint32, kind TransferKind, recipient string, amount Amount, now time.Time) *Transfer {
	return &Transfer{
		ID:        uuid.NewString(),
		RoundID:   roundID,
		Recipient: recipient,
		Kind:      kind,
		Amount:    amount,
		Status:    TransferStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
