package services

import (
	"context"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// LotteryService defines the lottery lifecycle: the mutating entry points and their queries.
// Mutations return *models.Error for every rejected call.
type LotteryService interface {
	// Init configures the operator and price. Only the contract identity may call it, once.
	Init(ctx context.Context, caller, operator string, price models.Amount) (*models.LotteryState, error)

	// StartRound opens a new round, or reopens the current one after a rollover
	StartRound(ctx context.Context, caller string) (*models.Round, error)

	// BuyTicket buys count tickets in the active round for exactly price×count
	BuyTicket(ctx context.Context, caller string, count uint32, attached models.Amount) (*TicketReceipt, error)

	// DrawWinner closes the round, either drawing a winner or rolling over
	DrawWinner(ctx context.Context, caller string) (*DrawResult, error)

	// SettlePayout splits the pool of the drawn round and queues the transfers
	SettlePayout(ctx context.Context, caller string) (*PayoutResult, error)

	// SetTicketPrice changes the price between rounds
	SetTicketPrice(ctx context.Context, caller string, price models.Amount) (*models.LotteryState, error)

	GetTicketPrice(ctx context.Context) (models.Amount, error)
	GetPhase(ctx context.Context) (models.Phase, error)
	GetState(ctx context.Context) (*models.LotteryState, error)
	GetRound(ctx context.Context, id uint32) (*models.Round, error)
	ListRounds(ctx context.Context, limit int) ([]*models.Round, error)

	// GetPlayerTicketCount reads the current round; it is 0 before the first round
	GetPlayerTicketCount(ctx context.Context, player string) (uint32, error)
	GetPlayerTicketCountInRound(ctx context.Context, roundID uint32, player string) (uint32, error)
}

// PayoutService defines the interface for the payout outbox
type PayoutService interface {
	TransfersByRound(ctx context.Context, roundID uint32) ([]*models.Transfer, error)
	TransfersByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]*models.Transfer, error)

	// Dispatch sends pending transfers, and failed ones too when retryFailed is set. Operator only.
	Dispatch(ctx context.Context, caller string, retryFailed bool) (*DispatchResult, error)

	// Confirm asks the gateway about every SENT transfer. Operator only.
	Confirm(ctx context.Context, caller string) (*ConfirmResult, error)
}

// EventService defines the interface for reading the lifecycle log
type EventService interface {
	ListEvents(ctx context.Context, page, limit int) ([]*models.Event, error)
	RoundEvents(ctx context.Context, roundID uint32) ([]*models.Event, error)
}
