package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

// StateRepository reads and writes the lottery state singleton
type StateRepository struct {
	collection *mongo.Collection
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(db *mongo.Database) *StateRepository {
	return &StateRepository{
		collection: db.Collection("lottery_state"),
	}
}

// Find returns the stored state, or the default state when none exists yet
func (r *StateRepository) Find(ctx context.Context) (*models.LotteryState, error) {
	var rec repositories.StateRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": repositories.StateID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DefaultLotteryState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lottery state: %w", err)
	}
	return rec.Model()
}

// Save upserts the state
func (r *StateRepository) Save(ctx context.Context, state *models.LotteryState) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": repositories.StateID},
		repositories.NewStateRecord(state),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save lottery state: %w", err)
	}
	return nil
}
