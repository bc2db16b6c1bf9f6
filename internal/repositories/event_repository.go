package repositories

import (
	"context"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// EventRepository defines the interface for reading the lifecycle log.
// Events are written only through LotteryStore.Commit.
type EventRepository interface {
	// FindByRound returns the events of a round, oldest first
	FindByRound(ctx context.Context, roundID uint32) ([]*models.Event, error)

	// FindAll returns a page of events, newest first. page starts at 1.
	FindAll(ctx context.Context, page, limit int) ([]*models.Event, error)
}
