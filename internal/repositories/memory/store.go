package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

// Store is an in-process repositories.Store. Values are copied on the way in
// and out so callers never share memory with the store.
type Store struct {
	mu        sync.RWMutex
	state     *models.LotteryState
	rounds    map[uint32]*models.Round
	transfers map[string]*models.Transfer
	events    []*models.Event
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		rounds:    make(map[uint32]*models.Round),
		transfers: make(map[string]*models.Transfer),
	}
}

// LoadState returns the stored state or the default state
func (s *Store) LoadState(ctx context.Context) (*models.LotteryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return models.DefaultLotteryState(), nil
	}
	return s.state.Clone(), nil
}

// GetRound returns a round by id
func (s *Store) GetRound(ctx context.Context, id uint32) (*models.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	round, ok := s.rounds[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return round.Clone(), nil
}

// ListRounds returns rounds newest first
func (s *Store) ListRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rounds := make([]*models.Round, 0, len(s.rounds))
	for _, r := range s.rounds {
		rounds = append(rounds, r.Clone())
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].ID > rounds[j].ID })
	if limit > 0 && len(rounds) > limit {
		rounds = rounds[:limit]
	}
	return rounds, nil
}

// Commit applies the change set under the write lock
func (s *Store) Commit(ctx context.Context, changes repositories.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if changes.State != nil {
		s.state = changes.State.Clone()
	}
	if changes.Round != nil {
		s.rounds[changes.Round.ID] = changes.Round.Clone()
	}
	for _, t := range changes.Transfers {
		c := *t
		s.transfers[t.ID] = &c
	}
	for _, e := range changes.Events {
		s.events = append(s.events, cloneEvent(e))
	}
	return nil
}

// Close is a no-op
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Transfers returns the payout outbox
func (s *Store) Transfers() repositories.TransferRepository {
	return &transferRepository{store: s}
}

// Events returns the lifecycle log
func (s *Store) Events() repositories.EventRepository {
	return &eventRepository{store: s}
}

type transferRepository struct {
	store *Store
}

func (r *transferRepository) FindByRound(ctx context.Context, roundID uint32) ([]*models.Transfer, error) {
	return r.find(func(t *models.Transfer) bool { return t.RoundID == roundID }), nil
}

func (r *transferRepository) FindByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]*models.Transfer, error) {
	return r.find(func(t *models.Transfer) bool {
		for _, s := range statuses {
			if t.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *transferRepository) UpdateStatus(ctx context.Context, transfer *models.Transfer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.transfers[transfer.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.Status = transfer.Status
	existing.Reference = transfer.Reference
	existing.Error = transfer.Error
	existing.Attempts = transfer.Attempts
	existing.UpdatedAt = transfer.UpdatedAt
	return nil
}

func (r *transferRepository) find(match func(*models.Transfer) bool) []*models.Transfer {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	transfers := []*models.Transfer{}
	for _, t := range r.store.transfers {
		if match(t) {
			c := *t
			transfers = append(transfers, &c)
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].RoundID != transfers[j].RoundID {
			return transfers[i].RoundID < transfers[j].RoundID
		}
		return transfers[i].Kind > transfers[j].Kind
	})
	return transfers
}

type eventRepository struct {
	store *Store
}

func (r *eventRepository) FindByRound(ctx context.Context, roundID uint32) ([]*models.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := []*models.Event{}
	for _, e := range r.store.events {
		if e.RoundID == roundID {
			events = append(events, cloneEvent(e))
		}
	}
	return events, nil
}

func (r *eventRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := []*models.Event{}
	for i := len(r.store.events) - 1; i >= 0; i-- {
		events = append(events, cloneEvent(r.store.events[i]))
	}
	return repositories.Paginate(events, page, limit), nil
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	if e.Details != nil {
		c.Details = make(map[string]string, len(e.Details))
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return &c
}
