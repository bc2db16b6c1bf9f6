package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

// Store implements repositories.Store with one MongoDB transaction per commit.
// Transactions need a replica set or sharded cluster.
type Store struct {
	client    *mongo.Client
	states    *StateRepository
	rounds    *RoundRepository
	transfers *TransferRepository
	events    *EventRepository
}

// NewStore creates a Store over db
func NewStore(db *mongo.Database) *Store {
	return &Store{
		client:    db.Client(),
		states:    NewStateRepository(db),
		rounds:    NewRoundRepository(db),
		transfers: NewTransferRepository(db),
		events:    NewEventRepository(db),
	}
}

// LoadState returns the stored state
func (s *Store) LoadState(ctx context.Context) (*models.LotteryState, error) {
	return s.states.Find(ctx)
}

// GetRound returns a round by id
func (s *Store) GetRound(ctx context.Context, id uint32) (*models.Round, error) {
	return s.rounds.FindByID(ctx, id)
}

// ListRounds returns rounds newest first
func (s *Store) ListRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	return s.rounds.FindAll(ctx, limit)
}

// Commit writes the change set inside a multi-document transaction
func (s *Store) Commit(ctx context.Context, changes repositories.ChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// 1. Lottery state
		if changes.State != nil {
			if err := s.states.Save(sc, changes.State); err != nil {
				return nil, err
			}
		}

		// 2. Round and its ledger
		if changes.Round != nil {
			if err := s.rounds.Save(sc, changes.Round); err != nil {
				return nil, err
			}
		}

		// 3. Payout outbox
		if err := s.transfers.CreateMany(sc, changes.Transfers); err != nil {
			return nil, err
		}

		// 4. Lifecycle log
		return nil, s.events.CreateMany(sc, changes.Events)
	})
	if err != nil {
		return fmt.Errorf("failed to commit lottery changes: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the caller
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Transfers returns the payout outbox
func (s *Store) Transfers() repositories.TransferRepository {
	return s.transfers
}

// Events returns the lifecycle log
func (s *Store) Events() repositories.EventRepository {
	return s.events
}
