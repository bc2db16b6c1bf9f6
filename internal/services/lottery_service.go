package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

// Compile-time check to ensure LotteryServiceImpl implements LotteryService
var _ LotteryService = (*LotteryServiceImpl)(nil)

// DrawOutcome tells whether a draw picked a winner or rolled the round over
type DrawOutcome string

const (
	DrawOutcomeWinner   DrawOutcome = "WINNER"
	DrawOutcomeRollover DrawOutcome = "ROLLOVER"
)

// LotteryConfig is the policy the lifecycle enforces
type LotteryConfig struct {
	ContractID    string
	RoundDuration time.Duration
	MinTickets    uint32
	MinPlayers    uint32
}

// TicketReceipt describes a successful purchase
type TicketReceipt struct {
	RoundID      uint32        `json:"round_id"`
	FirstTicket  uint32        `json:"first_ticket"`
	Count        uint32        `json:"count"`
	AmountPaid   models.Amount `json:"amount_paid"`
	PlayerTotal  uint32        `json:"player_tickets"`
	TicketsSold  uint32        `json:"tickets_sold"`
	PooledAmount models.Amount `json:"pooled_amount"`
}

// DrawResult describes the end of a round's window
type DrawResult struct {
	RoundID            uint32      `json:"round_id"`
	Outcome            DrawOutcome `json:"outcome"`
	Winner             string      `json:"winner,omitempty"`
	WinningTicketIndex uint32      `json:"winning_ticket_index"`
	TicketsSold        uint32      `json:"tickets_sold"`
	PlayerCount        uint32      `json:"player_count"`
}

// PayoutResult describes a settled round
type PayoutResult struct {
	RoundID    uint32             `json:"round_id"`
	Winner     string             `json:"winner"`
	Operator   string             `json:"operator"`
	Settlement *models.Settlement `json:"settlement"`
	Transfers  []*models.Transfer `json:"transfers"`
}

// LotteryServiceImpl runs the lottery state machine. Every mutating call holds
// the write lock, performs all checks, then writes one change set.
type LotteryServiceImpl struct {
	mu     sync.RWMutex
	store  repositories.LotteryStore
	cfg    LotteryConfig
	clock  Clock
	random RandomSource
	log    *logrus.Entry
}

// NewLotteryService creates a new LotteryServiceImpl
func NewLotteryService(
	store repositories.LotteryStore,
	cfg LotteryConfig,
	clock Clock,
	random RandomSource,
	logger *logrus.Logger,
) *LotteryServiceImpl {
	return &LotteryServiceImpl{
		store:  store,
		cfg:    cfg,
		clock:  clock,
		random: random,
		log:    logger.WithField("component", "lottery"),
	}
}

// Init configures the lottery and moves it to Idle
func (s *LotteryServiceImpl) Init(ctx context.Context, caller, operator string, price models.Amount) (state *models.LotteryState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe("init", state, nil, err) }()

	if caller == "" || caller != s.cfg.ContractID {
		return nil, models.NewError(models.ErrorKindUnauthorized, "only the contract may initialise the lottery")
	}

	state, err = s.store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	if state.Phase != models.PhaseInactive {
		return nil, models.NewError(models.ErrorKindPhaseViolation, "lottery already initialised")
	}
	if operator == "" {
		return nil, models.NewError(models.ErrorKindInvalidArgument, "operator is required")
	}

	now := s.now()
	state.Operator = operator
	state.TicketPrice = price
	state.Phase = models.PhaseIdle
	state.UpdatedAt = now

	event := models.NewEvent(models.EventLotteryInitiated, 0, caller, "Lottery initiated", now).
		With("operator", operator).
		With("ticket_price", price.String())
	if err := s.store.Commit(ctx, repositories.ChangeSet{State: state, Events: []*models.Event{event}}); err != nil {
		return nil, fmt.Errorf("failed to commit init: %w", err)
	}

	s.log.WithFields(logrus.Fields{"operator": operator, "ticket_price": price.String()}).Info("Lottery initiated")
	return state, nil
}

// StartRound opens round id+1, or restarts the current round when the rollover flag is set
func (s *LotteryServiceImpl) StartRound(ctx context.Context, caller string) (round *models.Round, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state *models.LotteryState
	defer func() { s.observe("start_round", state, round, err) }()

	// 1. Authorise
	state, err = s.loadOperatorState(ctx, caller, models.PhaseIdle)
	if err != nil {
		return nil, err
	}

	// 2. Pick the round
	now := s.now()
	if state.Rollover {
		round, err = s.loadRound(ctx, state.CurrentRoundID)
		if err != nil {
			return nil, err
		}
		if round.Halted {
			return nil, haltedError(round.ID)
		}
		round.Restart(now, s.cfg.RoundDuration)
		state.Rollover = false
	} else {
		if state.CurrentRoundID == math.MaxUint32 {
			return nil, models.NewError(models.ErrorKindInvalidArgument, "round id space exhausted")
		}
		round = models.NewRound(state.CurrentRoundID+1, now, s.cfg.RoundDuration)
		state.CurrentRoundID = round.ID
	}

	// 3. Commit
	state.Phase = models.PhaseActive
	state.UpdatedAt = now
	event := models.NewEvent(models.EventRoundStarted, round.ID, caller, "Lottery started", now).
		With("end_time", round.EndTime.Format(time.RFC3339))
	if err = s.store.Commit(ctx, repositories.ChangeSet{State: state, Round: round, Events: []*models.Event{event}}); err != nil {
		return nil, fmt.Errorf("failed to commit round start: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"round_id":     round.ID,
		"end_time":     round.EndTime,
		"tickets_sold": round.TicketsSold,
	}).Info("Lottery started")
	return round, nil
}

// BuyTicket records count tickets for caller in the active round
func (s *LotteryServiceImpl) BuyTicket(ctx context.Context, caller string, count uint32, attached models.Amount) (receipt *TicketReceipt, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		state *models.LotteryState
		round *models.Round
	)
	defer func() { s.observe("buy_ticket", state, round, err) }()

	if caller == "" {
		return nil, models.NewError(models.ErrorKindUnauthorized, "caller identity is required")
	}

	state, err = s.store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	if err = state.CheckPhase(models.PhaseActive); err != nil {
		return nil, err
	}
	round, err = s.loadRound(ctx, state.CurrentRoundID)
	if err != nil {
		return nil, err
	}
	if round.Halted {
		return nil, haltedError(round.ID)
	}

	now := s.now()
	if !round.IsOpen(now) {
		return nil, models.NewError(models.ErrorKindWindowClosed, "round %d closed at %s", round.ID, round.EndTime.Format(time.RFC3339))
	}

	required, err := state.TicketPrice.MulCount(count)
	if err != nil {
		return nil, models.NewError(models.ErrorKindPaymentMismatch, "incorrect payment: price of %d tickets overflows", count)
	}
	switch attached.Cmp(required) {
	case -1:
		return nil, models.NewError(models.ErrorKindPaymentMismatch, "incorrect payment: %d tickets cost %s, attached only %s", count, required, attached)
	case 1:
		return nil, models.NewError(models.ErrorKindPaymentMismatch, "incorrect payment: %d tickets cost %s, attached %s too much", count, required, attached)
	}

	first := round.TicketsSold
	if err = round.BuyTickets(caller, count, attached); err != nil {
		return nil, err
	}

	event := models.NewEvent(models.EventTicketsPurchased, round.ID, caller, "Tickets purchased", now).
		With("count", strconv.FormatUint(uint64(count), 10)).
		With("first_ticket", strconv.FormatUint(uint64(first), 10)).
		With("amount", attached.String())
	if err = s.store.Commit(ctx, repositories.ChangeSet{Round: round, Events: []*models.Event{event}}); err != nil {
		return nil, fmt.Errorf("failed to commit ticket purchase: %w", err)
	}
	metrics.RecordTickets(count)

	s.log.WithFields(logrus.Fields{
		"round_id": round.ID,
		"caller":   caller,
		"count":    count,
		"sold":     round.TicketsSold,
	}).Debug("Tickets purchased")

	return &TicketReceipt{
		RoundID:      round.ID,
		FirstTicket:  first,
		Count:        count,
		AmountPaid:   attached,
		PlayerTotal:  round.Ledger.TicketsOf(caller),
		TicketsSold:  round.TicketsSold,
		PooledAmount: round.PooledAmount,
	}, nil
}

// DrawWinner ends the active round once its window has passed
func (s *LotteryServiceImpl) DrawWinner(ctx context.Context, caller string) (result *DrawResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		state *models.LotteryState
		round *models.Round
	)
	defer func() { s.observe("draw_winner", state, round, err) }()

	// 1. Authorise and load
	state, err = s.loadOperatorState(ctx, caller, models.PhaseActive)
	if err != nil {
		return nil, err
	}
	round, err = s.loadRound(ctx, state.CurrentRoundID)
	if err != nil {
		return nil, err
	}
	if round.Halted {
		return nil, haltedError(round.ID)
	}

	now := s.now()
	if round.IsOpen(now) {
		return nil, models.NewError(models.ErrorKindWindowOpen, "round %d is open until %s", round.ID, round.EndTime.Format(time.RFC3339))
	}

	result = &DrawResult{
		RoundID:     round.ID,
		TicketsSold: round.TicketsSold,
		PlayerCount: round.PlayerCount,
	}
	logger := s.log.WithFields(logrus.Fields{
		"round_id":     round.ID,
		"tickets_sold": round.TicketsSold,
		"player_count": round.PlayerCount,
	})

	// 2. Under-participated rounds roll over without a draw
	if !round.MeetsParticipation(s.cfg.MinTickets, s.cfg.MinPlayers) {
		state.Rollover = true
		state.Phase = models.PhaseIdle
		state.UpdatedAt = now

		event := models.NewEvent(models.EventRoundRolledOver, round.ID, caller, "Not enough participation, round rolled over", now)
		if err = s.store.Commit(ctx, repositories.ChangeSet{State: state, Events: []*models.Event{event}}); err != nil {
			return nil, fmt.Errorf("failed to commit rollover: %w", err)
		}
		logger.Info("Not enough participation, round rolled over")
		result.Outcome = DrawOutcomeRollover
		return result, nil
	}

	// 3. Draw
	roll, err := s.random.Roll(DrawInput{
		RoundID:     round.ID,
		TicketsSold: round.TicketsSold,
		PlayerCount: round.PlayerCount,
		Time:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draw random value: %w", err)
	}

	if drawErr := round.DrawWinner(roll); drawErr != nil {
		if models.KindOf(drawErr) != models.ErrorKindConsistency {
			return nil, drawErr
		}
		// The ledger is corrupt: halt the round so no further call can touch it
		round.Halted = true
		event := models.NewEvent(models.EventRoundHalted, round.ID, caller, "Round halted", now).
			With("reason", drawErr.Error())
		if err = s.store.Commit(ctx, repositories.ChangeSet{Round: round, Events: []*models.Event{event}}); err != nil {
			return nil, fmt.Errorf("failed to halt round %d after %v: %w", round.ID, drawErr, err)
		}
		logger.WithError(drawErr).Error("Round halted")
		return nil, drawErr
	}

	// 4. Commit
	state.Phase = models.PhasePayout
	state.UpdatedAt = now
	event := models.NewEvent(models.EventWinnerDrawn, round.ID, caller, "Winning ticket drawn", now).
		With("winner", round.Winner).
		With("ticket", strconv.FormatUint(uint64(round.WinningTicketIndex), 10))
	if err = s.store.Commit(ctx, repositories.ChangeSet{State: state, Round: round, Events: []*models.Event{event}}); err != nil {
		return nil, fmt.Errorf("failed to commit draw: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"winner": round.Winner,
		"ticket": round.WinningTicketIndex,
	}).Info("Winning ticket drawn")

	result.Outcome = DrawOutcomeWinner
	result.Winner = round.Winner
	result.WinningTicketIndex = round.WinningTicketIndex
	return result, nil
}

// SettlePayout splits the drawn round's pool and queues the transfers
func (s *LotteryServiceImpl) SettlePayout(ctx context.Context, caller string) (result *PayoutResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		state *models.LotteryState
		round *models.Round
	)
	defer func() { s.observe("settle_payout", state, round, err) }()

	state, err = s.loadOperatorState(ctx, caller, models.PhasePayout)
	if err != nil {
		return nil, err
	}
	round, err = s.loadRound(ctx, state.CurrentRoundID)
	if err != nil {
		return nil, err
	}
	if round.Halted {
		return nil, haltedError(round.ID)
	}
	if !round.HasWinner() {
		return nil, models.NewError(models.ErrorKindConsistency, "round %d is in payout without a winner", round.ID)
	}

	now := s.now()
	settlement, err := round.Settle(now)
	if err != nil {
		return nil, models.NewError(models.ErrorKindConsistency, "failed to split pool of round %d: %v", round.ID, err)
	}

	// Zero shares produce no transfer
	transfers := []*models.Transfer{}
	if !settlement.WinnerAmount.IsZero() {
		transfers = append(transfers, models.NewTransfer(round.ID, models.TransferKindWinner, round.Winner, settlement.WinnerAmount, now))
	}
	if !settlement.OperatorAmount.IsZero() {
		transfers = append(transfers, models.NewTransfer(round.ID, models.TransferKindOperator, state.Operator, settlement.OperatorAmount, now))
	}

	state.Phase = models.PhaseIdle
	state.UpdatedAt = now
	event := models.NewEvent(models.EventPayoutSettled, round.ID, caller, "Payout settled", now).
		With("winner", round.Winner).
		With("winner_amount", settlement.WinnerAmount.String()).
		With("operator_amount", settlement.OperatorAmount.String()).
		With("retained_amount", settlement.RetainedAmount.String())

	err = s.store.Commit(ctx, repositories.ChangeSet{
		State:     state,
		Round:     round,
		Transfers: transfers,
		Events:    []*models.Event{event},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit payout: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"round_id":        round.ID,
		"winner":          round.Winner,
		"winner_amount":   settlement.WinnerAmount.String(),
		"operator_amount": settlement.OperatorAmount.String(),
	}).Info("Payout settled")

	return &PayoutResult{
		RoundID:    round.ID,
		Winner:     round.Winner,
		Operator:   state.Operator,
		Settlement: settlement,
		Transfers:  transfers,
	}, nil
}

// SetTicketPrice changes the price; only allowed while Idle
func (s *LotteryServiceImpl) SetTicketPrice(ctx context.Context, caller string, price models.Amount) (state *models.LotteryState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe("set_ticket_price", state, nil, err) }()

	state, err = s.loadOperatorState(ctx, caller, models.PhaseIdle)
	if err != nil {
		return nil, err
	}

	now := s.now()
	previous := state.TicketPrice
	state.TicketPrice = price
	state.UpdatedAt = now

	event := models.NewEvent(models.EventPriceUpdated, state.CurrentRoundID, caller, "Ticket price updated", now).
		With("previous", previous.String()).
		With("price", price.String())
	if err = s.store.Commit(ctx, repositories.ChangeSet{State: state, Events: []*models.Event{event}}); err != nil {
		return nil, fmt.Errorf("failed to commit ticket price: %w", err)
	}

	s.log.WithFields(logrus.Fields{"previous": previous.String(), "price": price.String()}).Info("Ticket price updated")
	return state, nil
}

// GetTicketPrice returns the current price, or the default before init
func (s *LotteryServiceImpl) GetTicketPrice(ctx context.Context) (models.Amount, error) {
	state, err := s.GetState(ctx)
	if err != nil {
		return models.Amount{}, err
	}
	return state.TicketPrice, nil
}

// GetPhase returns the global phase
func (s *LotteryServiceImpl) GetPhase(ctx context.Context) (models.Phase, error) {
	state, err := s.GetState(ctx)
	if err != nil {
		return models.PhaseInactive, err
	}
	return state.Phase, nil
}

// GetState returns the lottery state singleton
func (s *LotteryServiceImpl) GetState(ctx context.Context) (*models.LotteryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	return state, nil
}

// GetRound returns a round by id
func (s *LotteryServiceImpl) GetRound(ctx context.Context, id uint32) (*models.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findRound(ctx, id)
}

// ListRounds returns up to limit rounds, newest first
func (s *LotteryServiceImpl) ListRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rounds, err := s.store.ListRounds(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// GetPlayerTicketCount returns player's tickets in the current round
func (s *LotteryServiceImpl) GetPlayerTicketCount(ctx context.Context, player string) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.store.LoadState(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load lottery state: %w", err)
	}
	// No round yet
	if state.CurrentRoundID == 0 {
		return 0, nil
	}

	round, err := s.findRound(ctx, state.CurrentRoundID)
	if err != nil {
		return 0, err
	}
	return round.Ledger.TicketsOf(player), nil
}

// GetPlayerTicketCountInRound returns player's tickets in a given round
func (s *LotteryServiceImpl) GetPlayerTicketCountInRound(ctx context.Context, roundID uint32, player string) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	round, err := s.findRound(ctx, roundID)
	if err != nil {
		return 0, err
	}
	return round.Ledger.TicketsOf(player), nil
}

// loadOperatorState loads the state and checks caller and phase, in that order
func (s *LotteryServiceImpl) loadOperatorState(ctx context.Context, caller string, phase models.Phase) (*models.LotteryState, error) {
	state, err := s.store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	if err := state.CheckOperator(caller); err != nil {
		return nil, err
	}
	if err := state.CheckPhase(phase); err != nil {
		return nil, err
	}
	return state, nil
}

// loadRound loads the round the state points at. A missing current round means
// the state and registry disagree.
func (s *LotteryServiceImpl) loadRound(ctx context.Context, id uint32) (*models.Round, error) {
	round, err := s.store.GetRound(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.NewError(models.ErrorKindConsistency, "current round %d is missing", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d: %w", id, err)
	}
	return round, nil
}

func (s *LotteryServiceImpl) findRound(ctx context.Context, id uint32) (*models.Round, error) {
	round, err := s.store.GetRound(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.NewError(models.ErrorKindNotFound, "invalid round id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d: %w", id, err)
	}
	return round, nil
}

// observe records the outcome of a mutating call. state and round are only
// published when the call succeeded.
func (s *LotteryServiceImpl) observe(entryPoint string, state *models.LotteryState, round *models.Round, err error) {
	if err != nil {
		outcome := string(models.KindOf(err))
		if outcome == "" {
			outcome = "internal"
			s.log.WithError(err).WithField("entry_point", entryPoint).Error("Lottery call failed")
		}
		metrics.RecordCall(entryPoint, outcome)
		return
	}
	metrics.RecordCall(entryPoint, "ok")

	if state == nil {
		return
	}
	metrics.SetLotteryState(uint8(state.Phase), state.CurrentRoundID)
	// calls that do not touch the round leave its pool as last published
	if round != nil {
		metrics.SetPooledAmount(round.PooledAmount.Float64())
	}
}

// now reads the clock at the precision the stores keep
func (s *LotteryServiceImpl) now() time.Time {
	return models.Timestamp(s.clock.Now())
}

func haltedError(id uint32) error {
	return models.NewError(models.ErrorKindConsistency, "round %d is halted", id)
}
