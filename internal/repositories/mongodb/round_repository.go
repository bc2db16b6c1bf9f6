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

// RoundRepository is the round registry, one document per round id
type RoundRepository struct {
	collection *mongo.Collection
}

// NewRoundRepository creates a new RoundRepository
func NewRoundRepository(db *mongo.Database) *RoundRepository {
	return &RoundRepository{
		collection: db.Collection("rounds"),
	}
}

// FindByID finds a round by id
func (r *RoundRepository) FindByID(ctx context.Context, id uint32) (*models.Round, error) {
	var rec repositories.RoundRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find round %d: %w", id, err)
	}
	return rec.Model(), nil
}

// FindAll returns rounds newest first
func (r *RoundRepository) FindAll(ctx context.Context, limit int) ([]*models.Round, error) {
	opts := options.Find().SetSort(bson.M{"_id": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []repositories.RoundRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}

	rounds := make([]*models.Round, 0, len(recs))
	for _, rec := range recs {
		rounds = append(rounds, rec.Model())
	}
	return rounds, nil
}

// Save upserts a round with its ledger
func (r *RoundRepository) Save(ctx context.Context, round *models.Round) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": round.ID},
		repositories.NewRoundRecord(round),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save round %d: %w", round.ID, err)
	}
	return nil
}
