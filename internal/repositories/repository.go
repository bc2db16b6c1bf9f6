package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// ErrNotFound is returned by lookups that match nothing
var ErrNotFound = errors.New("record not found")

// ChangeSet is everything one lottery call writes. A store applies it atomically:
// either every part is persisted or none is.
type ChangeSet struct {
	State     *models.LotteryState
	Round     *models.Round
	Transfers []*models.Transfer
	Events    []*models.Event
}

// IsEmpty reports whether the change set writes nothing
func (c *ChangeSet) IsEmpty() bool {
	return c.State == nil && c.Round == nil && len(c.Transfers) == 0 && len(c.Events) == 0
}

// LotteryStore persists the lottery state singleton and the round registry
type LotteryStore interface {
	// LoadState returns the stored state, or models.DefaultLotteryState() if none was written
	LoadState(ctx context.Context) (*models.LotteryState, error)

	// GetRound returns the round with id, or ErrNotFound
	GetRound(ctx context.Context, id uint32) (*models.Round, error)

	// ListRounds returns up to limit rounds, newest first. limit <= 0 means all.
	ListRounds(ctx context.Context, limit int) ([]*models.Round, error)

	// Commit applies a change set atomically
	Commit(ctx context.Context, changes ChangeSet) error

	Close(ctx context.Context) error
}

// TransferRepository defines the interface for the payout outbox
type TransferRepository interface {
	FindByRound(ctx context.Context, roundID uint32) ([]*models.Transfer, error)
	FindByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]*models.Transfer, error)
	UpdateStatus(ctx context.Context, transfer *models.Transfer) error
}

// Store bundles every repository a backend provides
type Store interface {
	LotteryStore
	Transfers() TransferRepository
	Events() EventRepository
}

// Paginate returns the page-th slice of limit items. page starts at 1; limit <= 0 returns everything.
func Paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return items[:0]
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
