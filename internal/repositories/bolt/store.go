// Package bolt stores the lottery in a single bbolt file. Every commit is one
// read-write transaction, so a change set lands completely or not at all.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

var (
	stateBucket     = []byte("state")
	roundsBucket    = []byte("rounds")
	transfersBucket = []byte("transfers")
	eventsBucket    = []byte("events")

	stateKey = []byte(repositories.StateID)
)

// Store implements repositories.Store on top of bbolt
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file at path and its buckets
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{stateBucket, roundsBucket, transfersBucket, eventsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// LoadState returns the stored state or the default state
func (s *Store) LoadState(ctx context.Context) (*models.LotteryState, error) {
	var state *models.LotteryState
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(stateBucket).Get(stateKey)
		if data == nil {
			state = models.DefaultLotteryState()
			return nil
		}
		var rec repositories.StateRecord
		if err := bson.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode lottery state: %w", err)
		}
		var err error
		state, err = rec.Model()
		return err
	})
	return state, err
}

// GetRound returns a round by id
func (s *Store) GetRound(ctx context.Context, id uint32) (*models.Round, error) {
	var round *models.Round
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(roundsBucket).Get(roundKey(id))
		if data == nil {
			return repositories.ErrNotFound
		}
		var err error
		round, err = decodeRound(data)
		return err
	})
	return round, err
}

// ListRounds walks the rounds bucket backwards, newest first
func (s *Store) ListRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	rounds := []*models.Round{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(roundsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(rounds) >= limit {
				break
			}
			round, err := decodeRound(v)
			if err != nil {
				return err
			}
			rounds = append(rounds, round)
		}
		return nil
	})
	return rounds, err
}

// Commit writes the change set in one transaction
func (s *Store) Commit(ctx context.Context, changes repositories.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if changes.State != nil {
			if err := put(tx.Bucket(stateBucket), stateKey, repositories.NewStateRecord(changes.State)); err != nil {
				return fmt.Errorf("failed to write lottery state: %w", err)
			}
		}
		if changes.Round != nil {
			if err := put(tx.Bucket(roundsBucket), roundKey(changes.Round.ID), repositories.NewRoundRecord(changes.Round)); err != nil {
				return fmt.Errorf("failed to write round %d: %w", changes.Round.ID, err)
			}
		}
		for _, t := range changes.Transfers {
			if err := put(tx.Bucket(transfersBucket), []byte(t.ID), t); err != nil {
				return fmt.Errorf("failed to write transfer %s: %w", t.ID, err)
			}
		}

		events := tx.Bucket(eventsBucket)
		for _, e := range changes.Events {
			seq, err := events.NextSequence()
			if err != nil {
				return err
			}
			if err := put(events, sequenceKey(seq), e); err != nil {
				return fmt.Errorf("failed to write event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// Close closes the database file
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

// Transfers returns the payout outbox
func (s *Store) Transfers() repositories.TransferRepository {
	return &TransferRepository{db: s.db}
}

// Events returns the lifecycle log
func (s *Store) Events() repositories.EventRepository {
	return &EventRepository{db: s.db}
}

func put(b *bbolt.Bucket, key []byte, v interface{}) error {
	data, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func decodeRound(data []byte) (*models.Round, error) {
	var rec repositories.RoundRecord
	if err := bson.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode round: %w", err)
	}
	return rec.Model(), nil
}

// roundKey is big-endian so cursor order is round order
func roundKey(id uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, id)
	return k
}

func sequenceKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
