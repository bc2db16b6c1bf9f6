package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

// TransferRepository implements the repositories.TransferRepository interface
type TransferRepository struct {
	collection *mongo.Collection
}

// NewTransferRepository creates a new TransferRepository
func NewTransferRepository(db *mongo.Database) *TransferRepository {
	return &TransferRepository{
		collection: db.Collection("transfers"),
	}
}

// CreateMany inserts newly settled transfers
func (r *TransferRepository) CreateMany(ctx context.Context, transfers []*models.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	docs := make([]interface{}, len(transfers))
	for i, t := range transfers {
		docs[i] = t
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert transfers: %w", err)
	}
	return nil
}

// FindByRound finds the transfers of a round
func (r *TransferRepository) FindByRound(ctx context.Context, roundID uint32) ([]*models.Transfer, error) {
	return r.find(ctx, bson.M{"round_id": roundID})
}

// FindByStatus finds transfers in any of the given statuses
func (r *TransferRepository) FindByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]*models.Transfer, error) {
	return r.find(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

// UpdateStatus records the outcome of a delivery attempt
func (r *TransferRepository) UpdateStatus(ctx context.Context, transfer *models.Transfer) error {
	update := bson.M{
		"$set": bson.M{
			"status":     transfer.Status,
			"reference":  transfer.Reference,
			"error":      transfer.Error,
			"attempts":   transfer.Attempts,
			"updated_at": transfer.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": transfer.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", transfer.ID, err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TransferRepository) find(ctx context.Context, filter bson.M) ([]*models.Transfer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "round_id", Value: 1}, {Key: "kind", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers: %w", err)
	}
	defer cursor.Close(ctx)

	var transfers []*models.Transfer
	if err := cursor.All(ctx, &transfers); err != nil {
		return nil, err
	}
	if transfers == nil {
		transfers = []*models.Transfer{}
	}
	return transfers, nil
}
