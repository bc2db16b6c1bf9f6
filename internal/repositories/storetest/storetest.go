// Package storetest holds the behaviour every repositories.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// Run exercises a fresh store returned by newStore
func Run(t *testing.T, newStore func(t *testing.T) repositories.Store) {
	t.Run("default state", func(t *testing.T) {
		testDefaultState(t, newStore(t))
	})
	t.Run("commit and read back", func(t *testing.T) {
		testCommit(t, newStore(t))
	})
	t.Run("round times", func(t *testing.T) {
		testRoundTimes(t, newStore(t))
	})
	t.Run("round listing", func(t *testing.T) {
		testListRounds(t, newStore(t))
	})
	t.Run("transfers", func(t *testing.T) {
		testTransfers(t, newStore(t))
	})
	t.Run("events", func(t *testing.T) {
		testEvents(t, newStore(t))
	})
}

func testDefaultState(t *testing.T, store repositories.Store) {
	ctx := context.Background()

	state, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseInactive, state.Phase)
	assert.True(t, state.TicketPrice.Equal(models.DefaultTicketPrice))

	_, err = store.GetRound(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func testCommit(t *testing.T, store repositories.Store) {
	ctx := context.Background()

	round := models.NewRound(1, base, 48*time.Hour)
	require.NoError(t, round.BuyTickets("alice.near", 2, models.NewAmount(20)))
	state := &models.LotteryState{
		Phase:          models.PhaseActive,
		Operator:       "op.near",
		TicketPrice:    models.NewAmount(10),
		CurrentRoundID: 1,
		UpdatedAt:      base,
	}

	require.NoError(t, store.Commit(ctx, repositories.ChangeSet{
		State:  state,
		Round:  round,
		Events: []*models.Event{models.NewEvent(models.EventRoundStarted, 1, "op.near", "Lottery started", base)},
	}))

	// mutating the committed values must not leak into the store
	round.TicketsSold = 99
	state.Phase = models.PhasePayout

	gotState, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseActive, gotState.Phase)
	assert.Equal(t, "op.near", gotState.Operator)
	assert.Equal(t, "10", gotState.TicketPrice.String())
	assert.Equal(t, uint32(1), gotState.CurrentRoundID)

	gotRound, err := store.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), gotRound.TicketsSold)
	assert.Equal(t, uint32(1), gotRound.PlayerCount)
	assert.Equal(t, "20", gotRound.PooledAmount.String())
	assert.Equal(t, uint32(2), gotRound.Ledger.TicketsOf("alice.near"))
	owner, ok := gotRound.Ledger.OwnerOf(1)
	assert.True(t, ok)
	assert.Equal(t, "alice.near", owner)
	assert.True(t, base.Add(48*time.Hour).Equal(gotRound.EndTime))
}

func testRoundTimes(t *testing.T, store repositories.Store) {
	ctx := context.Background()

	// sub-millisecond inputs must come back exactly as the round holds them
	round := models.NewRound(1, base.Add(900*time.Microsecond), time.Hour+300*time.Microsecond)
	require.NoError(t, store.Commit(ctx, repositories.ChangeSet{Round: round}))

	got, err := store.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.True(t, round.StartTime.Equal(got.StartTime), "start %s, stored %s", round.StartTime, got.StartTime)
	assert.True(t, round.EndTime.Equal(got.EndTime), "end %s, stored %s", round.EndTime, got.EndTime)

	round.Restart(base.Add(2*time.Hour+999*time.Microsecond), time.Hour)
	require.NoError(t, store.Commit(ctx, repositories.ChangeSet{Round: round}))
	got, err = store.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.True(t, round.EndTime.Equal(got.EndTime), "end %s, stored %s", round.EndTime, got.EndTime)
}

func testListRounds(t *testing.T, store repositories.Store) {
	ctx := context.Background()

	for id := uint32(1); id <= 3; id++ {
		require.NoError(t, store.Commit(ctx, repositories.ChangeSet{Round: models.NewRound(id, base, time.Hour)}))
	}

	rounds, err := store.ListRounds(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rounds, 3)
	assert.Equal(t, uint32(3), rounds[0].ID)
	assert.Equal(t, uint32(1), rounds[2].ID)

	rounds, err = store.ListRounds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, uint32(2), rounds[1].ID)
}

func testTransfers(t *testing.T, store repositories.Store) {
	ctx := context.Background()

	winner := models.NewTransfer(1, models.TransferKindWinner, "alice.near", models.NewAmount(250), base)
	operator := models.NewTransfer(1, models.TransferKindOperator, "op.near", models.NewAmount(125), base)
	require.NoError(t, store.Commit(ctx, repositories.ChangeSet{Transfers: []*models.Transfer{winner, operator}}))

	byRound, err := store.Transfers().FindByRound(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byRound, 2)
	assert.Equal(t, models.TransferKindWinner, byRound[0].Kind)
	assert.Equal(t, "250", byRound[0].Amount.String())

	none, err := store.Transfers().FindByRound(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, none)

	winner.Status = models.TransferStatusSent
	winner.Reference = "tx-1"
	winner.Attempts = 1
	require.NoError(t, store.Transfers().UpdateStatus(ctx, winner))

	pending, err := store.Transfers().FindByStatus(ctx, models.TransferStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, operator.ID, pending[0].ID)

	sent, err := store.Transfers().FindByStatus(ctx, models.TransferStatusSent, models.TransferStatusFailed)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "tx-1", sent[0].Reference)

	missing := models.NewTransfer(1, models.TransferKindWinner, "x", models.NewAmount(1), base)
	assert.ErrorIs(t, store.Transfers().UpdateStatus(ctx, missing), repositories.ErrNotFound)
}

func testEvents(t *testing.T, store repositories.Store) {
	ctx := context.Background()

	for i, kind := range []models.EventKind{models.EventRoundStarted, models.EventTicketsPurchased, models.EventWinnerDrawn} {
		e := models.NewEvent(kind, 1, "op.near", string(kind), base.Add(time.Duration(i)*time.Minute)).With("n", "1")
		require.NoError(t, store.Commit(ctx, repositories.ChangeSet{Events: []*models.Event{e}}))
	}
	other := models.NewEvent(models.EventRoundStarted, 2, "op.near", "next", base.Add(time.Hour))
	require.NoError(t, store.Commit(ctx, repositories.ChangeSet{Events: []*models.Event{other}}))

	byRound, err := store.Events().FindByRound(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byRound, 3)
	assert.Equal(t, models.EventRoundStarted, byRound[0].Kind)
	assert.Equal(t, models.EventWinnerDrawn, byRound[2].Kind)
	assert.Equal(t, "1", byRound[0].Details["n"])

	page, err := store.Events().FindAll(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint32(2), page[0].RoundID)

	page, err = store.Events().FindAll(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, models.EventRoundStarted, page[1].Kind)
}
