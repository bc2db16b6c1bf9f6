package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	boltrepo "github.com/ArowuTest/raffle-backend/internal/repositories/bolt"
	"github.com/ArowuTest/raffle-backend/internal/repositories/memory"
)

const (
	contractID = "raffle.near"
	operatorID = "op.near"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixedSource struct {
	roll  uint64
	err   error
	calls []DrawInput
}

func (f *fixedSource) Roll(in DrawInput) (uint64, error) {
	f.calls = append(f.calls, in)
	return f.roll, f.err
}

// failingStore rejects every commit
type failingStore struct {
	repositories.LotteryStore
}

func (failingStore) Commit(ctx context.Context, changes repositories.ChangeSet) error {
	return errors.New("disk full")
}

type harness struct {
	svc    *LotteryServiceImpl
	store  *memory.Store
	clock  *fakeClock
	random *fixedSource
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		store:  memory.NewStore(),
		clock:  &fakeClock{now: epoch},
		random: &fixedSource{},
	}
	h.svc = NewLotteryService(h.store, LotteryConfig{
		ContractID:    contractID,
		RoundDuration: 48 * time.Hour,
		MinTickets:    5,
		MinPlayers:    2,
	}, h.clock, h.random, logger)
	return h
}

func (h *harness) initAndStart(t *testing.T, price uint64) {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.Init(ctx, contractID, operatorID, models.NewAmount(price))
	require.NoError(t, err)
	_, err = h.svc.StartRound(ctx, operatorID)
	require.NoError(t, err)
}

func (h *harness) buy(t *testing.T, player string, count uint32, price uint64) *TicketReceipt {
	t.Helper()
	receipt, err := h.svc.BuyTicket(context.Background(), player, count, models.NewAmount(price*uint64(count)))
	require.NoError(t, err)
	return receipt
}

func assertKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, models.KindOf(err), "unexpected error: %v", err)
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	price, err := h.svc.GetTicketPrice(ctx)
	require.NoError(t, err)
	assert.True(t, price.Equal(models.DefaultTicketPrice), "default price before init")

	_, err = h.svc.Init(ctx, operatorID, operatorID, models.NewAmount(100))
	assertKind(t, err, models.ErrorKindUnauthorized)

	_, err = h.svc.Init(ctx, contractID, "", models.NewAmount(100))
	assertKind(t, err, models.ErrorKindInvalidArgument)

	state, err := h.svc.Init(ctx, contractID, operatorID, models.NewAmount(100))
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIdle, state.Phase)
	assert.Equal(t, operatorID, state.Operator)

	_, err = h.svc.Init(ctx, contractID, "someone.near", models.NewAmount(1))
	assertKind(t, err, models.ErrorKindPhaseViolation)

	state, err = h.svc.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, operatorID, state.Operator)
	assert.Equal(t, "100", state.TicketPrice.String())
}

func TestOperatorGatedCalls(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	// Before init nobody is the operator
	_, err := h.svc.StartRound(ctx, operatorID)
	assertKind(t, err, models.ErrorKindUnauthorized)

	_, err = h.svc.Init(ctx, contractID, operatorID, models.NewAmount(100))
	require.NoError(t, err)

	_, err = h.svc.StartRound(ctx, "alice.near")
	assertKind(t, err, models.ErrorKindUnauthorized)
	_, err = h.svc.DrawWinner(ctx, "alice.near")
	assertKind(t, err, models.ErrorKindUnauthorized)
	_, err = h.svc.SettlePayout(ctx, "alice.near")
	assertKind(t, err, models.ErrorKindUnauthorized)
	_, err = h.svc.SetTicketPrice(ctx, "alice.near", models.NewAmount(1))
	assertKind(t, err, models.ErrorKindUnauthorized)

	// Wrong phase
	_, err = h.svc.DrawWinner(ctx, operatorID)
	assertKind(t, err, models.ErrorKindPhaseViolation)
	_, err = h.svc.SettlePayout(ctx, operatorID)
	assertKind(t, err, models.ErrorKindPhaseViolation)
	_, err = h.svc.BuyTicket(ctx, "alice.near", 1, models.NewAmount(100))
	assertKind(t, err, models.ErrorKindPhaseViolation)

	phase, err := h.svc.GetPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIdle, phase)
}

func TestStartRoundAllocatesIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, epoch, round.StartTime)
	assert.Equal(t, epoch.Add(48*time.Hour), round.EndTime)

	_, err = h.svc.StartRound(ctx, operatorID)
	assertKind(t, err, models.ErrorKindPhaseViolation)

	// Full cycle then a second round
	for _, p := range []string{"a", "b", "c", "d", "e"} {
		h.buy(t, p, 1, 100)
	}
	h.clock.Advance(48 * time.Hour)
	_, err = h.svc.DrawWinner(ctx, operatorID)
	require.NoError(t, err)
	_, err = h.svc.SettlePayout(ctx, operatorID)
	require.NoError(t, err)

	next, err := h.svc.StartRound(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), next.ID)
	assert.Zero(t, next.TicketsSold)

	first, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), first.TicketsSold, "settled rounds stay queryable")
}

func TestBuyTicket(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	r := h.buy(t, "alice.near", 1, 100)
	assert.Equal(t, uint32(0), r.FirstTicket)
	assert.Equal(t, uint32(1), r.TicketsSold)

	r = h.buy(t, "bob.near", 2, 100)
	assert.Equal(t, uint32(1), r.FirstTicket)
	assert.Equal(t, uint32(3), r.TicketsSold)
	assert.Equal(t, "300", r.PooledAmount.String())

	r = h.buy(t, "alice.near", 3, 100)
	assert.Equal(t, uint32(4), r.PlayerTotal)

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), round.TicketsSold)
	assert.Equal(t, uint32(2), round.PlayerCount)
	assert.Equal(t, "600", round.PooledAmount.String())

	var sum uint32
	for _, n := range round.Ledger.Holdings {
		sum += n
	}
	assert.Equal(t, round.TicketsSold, sum)

	count, err := h.svc.GetPlayerTicketCount(ctx, "alice.near")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), count)
	count, err = h.svc.GetPlayerTicketCount(ctx, "carol.near")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBuyTicketPaymentMismatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)
	h.buy(t, "alice.near", 1, 100)

	for _, tt := range []struct {
		attached uint64
		message  string
	}{
		{0, "attached only 0"},
		{199, "attached only 199"},
		{201, "attached 201 too much"},
		{300, "attached 300 too much"},
	} {
		_, err := h.svc.BuyTicket(ctx, "bob.near", 2, models.NewAmount(tt.attached))
		assertKind(t, err, models.ErrorKindPaymentMismatch)
		assert.Contains(t, err.Error(), tt.message)
	}

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), round.TicketsSold)
	assert.Equal(t, "100", round.PooledAmount.String())
}

func TestBuyTicketPriceOverflow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	max := models.MustParseAmount("340282366920938463463374607431768211455")
	_, err := h.svc.Init(ctx, contractID, operatorID, max)
	require.NoError(t, err)
	_, err = h.svc.StartRound(ctx, operatorID)
	require.NoError(t, err)

	_, err = h.svc.BuyTicket(ctx, "alice.near", 2, max)
	assertKind(t, err, models.ErrorKindPaymentMismatch)
}

func TestBuyTicketZeroCount(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	_, err := h.svc.BuyTicket(ctx, "alice.near", 0, models.NewAmount(0))
	assertKind(t, err, models.ErrorKindInvalidArgument)

	_, err = h.svc.BuyTicket(ctx, "", 1, models.NewAmount(100))
	assertKind(t, err, models.ErrorKindUnauthorized)
}

func TestBuyTicketWindowClosed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)
	h.buy(t, "alice.near", 1, 100)

	h.clock.Advance(48 * time.Hour)
	_, err := h.svc.BuyTicket(ctx, "bob.near", 1, models.NewAmount(100))
	assertKind(t, err, models.ErrorKindWindowClosed)

	// window is checked before payment
	_, err = h.svc.BuyTicket(ctx, "bob.near", 1, models.NewAmount(1))
	assertKind(t, err, models.ErrorKindWindowClosed)

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), round.TicketsSold)
}

func TestDrawWinnerWindowOpen(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	h.clock.Advance(48*time.Hour - time.Second)
	_, err := h.svc.DrawWinner(ctx, operatorID)
	assertKind(t, err, models.ErrorKindWindowOpen)

	phase, err := h.svc.GetPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseActive, phase)
}

func TestUnderParticipationRollsOver(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	h.buy(t, "A", 1, 100)
	r := h.buy(t, "B", 2, 100)
	assert.Equal(t, uint32(3), r.TicketsSold)

	h.clock.Advance(48 * time.Hour)
	result, err := h.svc.DrawWinner(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, DrawOutcomeRollover, result.Outcome)
	assert.Empty(t, result.Winner)
	assert.Empty(t, h.random.calls, "no draw happens on rollover")

	state, err := h.svc.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIdle, state.Phase)
	assert.True(t, state.Rollover)

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, round.Winner)

	// The next start reuses the id and keeps earlier sales
	h.clock.Advance(time.Hour)
	restarted, err := h.svc.StartRound(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), restarted.ID)
	assert.Equal(t, uint32(3), restarted.TicketsSold)
	assert.Equal(t, "300", restarted.PooledAmount.String())
	assert.Equal(t, epoch.Add(49*time.Hour), restarted.StartTime)

	state, err = h.svc.GetState(ctx)
	require.NoError(t, err)
	assert.False(t, state.Rollover)
	assert.Equal(t, uint32(1), state.CurrentRoundID)

	count, err := h.svc.GetPlayerTicketCount(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)
}

func TestSinglePlayerRollsOver(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)
	h.buy(t, "A", 10, 100)

	h.clock.Advance(48 * time.Hour)
	result, err := h.svc.DrawWinner(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, DrawOutcomeRollover, result.Outcome)
}

func TestDrawAndSettle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	h.buy(t, "A", 2, 100)
	h.buy(t, "B", 3, 100)

	h.random.roll = 13 // 13 % 5 = 3, owned by B
	h.clock.Advance(48 * time.Hour)
	result, err := h.svc.DrawWinner(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, DrawOutcomeWinner, result.Outcome)
	assert.Equal(t, uint32(3), result.WinningTicketIndex)
	assert.Equal(t, "B", result.Winner)
	require.Len(t, h.random.calls, 1)
	assert.Equal(t, DrawInput{RoundID: 1, TicketsSold: 5, PlayerCount: 2, Time: epoch.Add(48 * time.Hour)}, h.random.calls[0])

	phase, err := h.svc.GetPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhasePayout, phase)

	_, err = h.svc.SetTicketPrice(ctx, operatorID, models.NewAmount(5))
	assertKind(t, err, models.ErrorKindPhaseViolation)

	payout, err := h.svc.SettlePayout(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, "250", payout.Settlement.WinnerAmount.String())
	assert.Equal(t, "125", payout.Settlement.OperatorAmount.String())
	assert.Equal(t, "125", payout.Settlement.RetainedAmount.String())
	require.Len(t, payout.Transfers, 2)
	assert.Equal(t, "B", payout.Transfers[0].Recipient)
	assert.Equal(t, operatorID, payout.Transfers[1].Recipient)

	queued, err := h.store.Transfers().FindByRound(ctx, 1)
	require.NoError(t, err)
	require.Len(t, queued, 2)
	for _, tr := range queued {
		assert.Equal(t, models.TransferStatusPending, tr.Status)
	}

	state, err := h.svc.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIdle, state.Phase)
	assert.False(t, state.Rollover)

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", round.Winner)
	require.NotNil(t, round.Settlement)

	events, err := h.store.Events().FindByRound(ctx, 1)
	require.NoError(t, err)
	kinds := make([]models.EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []models.EventKind{
		models.EventRoundStarted,
		models.EventTicketsPurchased,
		models.EventTicketsPurchased,
		models.EventWinnerDrawn,
		models.EventPayoutSettled,
	}, kinds)
}

func TestSettleTruncatesOddPools(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 7)
	for _, p := range []string{"A", "B", "C", "D", "E"} {
		h.buy(t, p, 1, 7)
	}

	h.clock.Advance(48 * time.Hour)
	_, err := h.svc.DrawWinner(ctx, operatorID)
	require.NoError(t, err)

	payout, err := h.svc.SettlePayout(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, "17", payout.Settlement.WinnerAmount.String())
	assert.Equal(t, "8", payout.Settlement.OperatorAmount.String())
	assert.Equal(t, "10", payout.Settlement.RetainedAmount.String())
}

func TestSetTicketPrice(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, err := h.svc.Init(ctx, contractID, operatorID, models.NewAmount(100))
	require.NoError(t, err)

	state, err := h.svc.SetTicketPrice(ctx, operatorID, models.NewAmount(250))
	require.NoError(t, err)
	assert.Equal(t, "250", state.TicketPrice.String())

	_, err = h.svc.StartRound(ctx, operatorID)
	require.NoError(t, err)

	_, err = h.svc.SetTicketPrice(ctx, operatorID, models.NewAmount(1))
	assertKind(t, err, models.ErrorKindPhaseViolation)

	price, err := h.svc.GetTicketPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "250", price.String())

	h.buy(t, "A", 2, 250)
}

func TestDrawWithCorruptLedgerHaltsRound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)
	for _, p := range []string{"A", "B", "C", "D", "E"} {
		h.buy(t, p, 1, 100)
	}

	// Corrupt the stored ledger behind the service's back
	round, err := h.store.GetRound(ctx, 1)
	require.NoError(t, err)
	round.Ledger.Owners[2] = ""
	require.NoError(t, h.store.Commit(ctx, repositories.ChangeSet{Round: round}))

	h.random.roll = 2
	h.clock.Advance(48 * time.Hour)
	_, err = h.svc.DrawWinner(ctx, operatorID)
	assertKind(t, err, models.ErrorKindConsistency)

	halted, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.True(t, halted.Halted)
	assert.Empty(t, halted.Winner)

	phase, err := h.svc.GetPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseActive, phase)

	// Further mutating calls on the round are refused
	_, err = h.svc.DrawWinner(ctx, operatorID)
	assertKind(t, err, models.ErrorKindConsistency)
	_, err = h.svc.BuyTicket(ctx, "F", 1, models.NewAmount(100))
	assertKind(t, err, models.ErrorKindConsistency)
}

func TestGetRoundNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.GetRound(ctx, 1)
	assertKind(t, err, models.ErrorKindNotFound)

	_, err = h.svc.GetPlayerTicketCountInRound(ctx, 9, "A")
	assertKind(t, err, models.ErrorKindNotFound)

	count, err := h.svc.GetPlayerTicketCount(ctx, "A")
	require.NoError(t, err)
	assert.Zero(t, count, "no round yet is not an error")
}

func TestListRounds(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	rounds, err := h.svc.ListRounds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, uint32(1), rounds[0].ID)
}

func TestFailedCommitChangesNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	broken := NewLotteryService(failingStore{LotteryStore: h.store}, h.svc.cfg, h.clock, h.random, logger)

	_, err := broken.BuyTicket(ctx, "A", 1, models.NewAmount(100))
	require.Error(t, err)
	assert.Equal(t, models.ErrorKind(""), models.KindOf(err))

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, round.TicketsSold)
}

func TestRandomSourceErrorAborts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)
	for _, p := range []string{"A", "B", "C", "D", "E"} {
		h.buy(t, p, 1, 100)
	}
	h.random.err = errors.New("beacon unavailable")
	h.clock.Advance(48 * time.Hour)

	_, err := h.svc.DrawWinner(ctx, operatorID)
	require.Error(t, err)

	phase, err := h.svc.GetPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseActive, phase)
}

func TestConcurrentPurchases(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 10)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			player := []string{"A", "B", "C", "D"}[i%4]
			_, err := h.svc.BuyTicket(ctx, player, 2, models.NewAmount(20))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	round, err := h.svc.GetRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(40), round.TicketsSold)
	assert.Equal(t, uint32(4), round.PlayerCount)
	assert.Equal(t, "400", round.PooledAmount.String())
	assert.Equal(t, round.TicketsSold, round.Ledger.Len())
}

func TestRoundWindowMatchesStoredWindow(t *testing.T) {
	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := boltrepo.Open(filepath.Join(t.TempDir(), "raffle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })

	clock := &fakeClock{now: epoch.Add(900 * time.Microsecond)}
	svc := NewLotteryService(store, LotteryConfig{
		ContractID:    contractID,
		RoundDuration: time.Hour,
		MinTickets:    5,
		MinPlayers:    2,
	}, clock, &fixedSource{}, logger)

	_, err = svc.Init(ctx, contractID, operatorID, models.NewAmount(100))
	require.NoError(t, err)
	round, err := svc.StartRound(ctx, operatorID)
	require.NoError(t, err)

	stored, err := svc.GetRound(ctx, round.ID)
	require.NoError(t, err)
	assert.True(t, round.EndTime.Equal(stored.EndTime), "returned %s, stored %s", round.EndTime, stored.EndTime)

	// half a millisecond before the announced end the window is still open
	clock.Advance(round.EndTime.Sub(clock.Now()) - 500*time.Microsecond)
	_, err = svc.BuyTicket(ctx, "alice.near", 1, models.NewAmount(100))
	require.NoError(t, err)

	clock.Advance(500 * time.Microsecond)
	_, err = svc.BuyTicket(ctx, "alice.near", 1, models.NewAmount(100))
	assertKind(t, err, models.ErrorKindWindowClosed)
}

// gaugeValue reads a gauge from the metrics registry
func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.GetMetric())
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestPoolGaugeSurvivesPriceChangeAfterRollover(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.initAndStart(t, 100)
	h.buy(t, "A", 1, 100)
	h.buy(t, "B", 2, 100)

	h.clock.Advance(48 * time.Hour)
	result, err := h.svc.DrawWinner(ctx, operatorID)
	require.NoError(t, err)
	require.Equal(t, DrawOutcomeRollover, result.Outcome)
	assert.Equal(t, 300.0, gaugeValue(t, "raffle_lottery_pooled_amount"))

	_, err = h.svc.SetTicketPrice(ctx, operatorID, models.NewAmount(50))
	require.NoError(t, err)
	assert.Equal(t, 300.0, gaugeValue(t, "raffle_lottery_pooled_amount"))
	assert.Equal(t, float64(models.PhaseIdle), gaugeValue(t, "raffle_lottery_phase"))
}
