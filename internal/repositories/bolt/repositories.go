package bolt

import (
	"context"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

// TransferRepository implements repositories.TransferRepository
type TransferRepository struct {
	db *bbolt.DB
}

// FindByRound returns the transfers of a round, winner first
func (r *TransferRepository) FindByRound(ctx context.Context, roundID uint32) ([]*models.Transfer, error) {
	return r.scan(func(t *models.Transfer) bool { return t.RoundID == roundID })
}

// FindByStatus returns transfers in any of the given statuses
func (r *TransferRepository) FindByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]*models.Transfer, error) {
	return r.scan(func(t *models.Transfer) bool {
		for _, s := range statuses {
			if t.Status == s {
				return true
			}
		}
		return false
	})
}

// UpdateStatus overwrites the delivery fields of an existing transfer
func (r *TransferRepository) UpdateStatus(ctx context.Context, transfer *models.Transfer) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(transfersBucket)
		data := b.Get([]byte(transfer.ID))
		if data == nil {
			return repositories.ErrNotFound
		}

		var existing models.Transfer
		if err := bson.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("failed to decode transfer %s: %w", transfer.ID, err)
		}
		existing.Status = transfer.Status
		existing.Reference = transfer.Reference
		existing.Error = transfer.Error
		existing.Attempts = transfer.Attempts
		existing.UpdatedAt = transfer.UpdatedAt
		return put(b, []byte(transfer.ID), &existing)
	})
}

func (r *TransferRepository) scan(match func(*models.Transfer) bool) ([]*models.Transfer, error) {
	transfers := []*models.Transfer{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(transfersBucket).ForEach(func(k, v []byte) error {
			var t models.Transfer
			if err := bson.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("failed to decode transfer %s: %w", k, err)
			}
			if match(&t) {
				transfers = append(transfers, &t)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].RoundID != transfers[j].RoundID {
			return transfers[i].RoundID < transfers[j].RoundID
		}
		return transfers[i].Kind > transfers[j].Kind
	})
	return transfers, nil
}

// EventRepository implements repositories.EventRepository
type EventRepository struct {
	db *bbolt.DB
}

// FindByRound returns a round's events in the order they were written
func (r *EventRepository) FindByRound(ctx context.Context, roundID uint32) ([]*models.Event, error) {
	events := []*models.Event{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(eventsBucket).ForEach(func(k, v []byte) error {
			e, err := decodeEvent(v)
			if err != nil {
				return err
			}
			if e.RoundID == roundID {
				events = append(events, e)
			}
			return nil
		})
	})
	return events, err
}

// FindAll walks the log backwards and returns one page
func (r *EventRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Event, error) {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * limit

	events := []*models.Event{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if skip > 0 {
				skip--
				continue
			}
			if limit > 0 && len(events) >= limit {
				break
			}
			e, err := decodeEvent(v)
			if err != nil {
				return err
			}
			events = append(events, e)
		}
		return nil
	})
	return events, err
}

func decodeEvent(data []byte) (*models.Event, error) {
	var e models.Event
	if err := bson.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &e, nil
}
