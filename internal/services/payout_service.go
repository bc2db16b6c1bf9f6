package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ArowuTest/raffle-backend/pkg/transfergateway"
)

// Compile-time check to ensure PayoutServiceImpl implements PayoutService
var _ PayoutService = (*PayoutServiceImpl)(nil)

// DispatchResult summarises one dispatch run
type DispatchResult struct {
	Sent      int                `json:"sent"`
	Failed    int                `json:"failed"`
	Transfers []*models.Transfer `json:"transfers"`
}

// ConfirmResult summarises one confirmation run
type ConfirmResult struct {
	Confirmed int                `json:"confirmed"`
	Rejected  int                `json:"rejected"`
	Pending   int                `json:"pending"`
	Transfers []*models.Transfer `json:"transfers"`
}

// PayoutServiceImpl delivers the transfers queued by SettlePayout. Delivery is
// never retried automatically; the operator calls Dispatch again.
type PayoutServiceImpl struct {
	mu        sync.Mutex
	store     repositories.LotteryStore
	transfers repositories.TransferRepository
	gateway   transfergateway.Gateway
	clock     Clock
	log       *logrus.Entry
}

// NewPayoutService creates a new PayoutServiceImpl
func NewPayoutService(
	store repositories.LotteryStore,
	transfers repositories.TransferRepository,
	gateway transfergateway.Gateway,
	clock Clock,
	logger *logrus.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		store:     store,
		transfers: transfers,
		gateway:   gateway,
		clock:     clock,
		log:       logger.WithField("component", "payout"),
	}
}

// TransfersByRound returns the transfers queued for a round
func (s *PayoutServiceImpl) TransfersByRound(ctx context.Context, roundID uint32) ([]*models.Transfer, error) {
	transfers, err := s.transfers.FindByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers for round %d: %w", roundID, err)
	}
	return transfers, nil
}

// TransfersByStatus returns transfers in the given statuses, all of them when none are given
func (s *PayoutServiceImpl) TransfersByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]*models.Transfer, error) {
	if len(statuses) == 0 {
		statuses = []models.TransferStatus{
			models.TransferStatusPending,
			models.TransferStatusSent,
			models.TransferStatusConfirmed,
			models.TransferStatusFailed,
		}
	}
	transfers, err := s.transfers.FindByStatus(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers: %w", err)
	}
	return transfers, nil
}

// Dispatch sends every pending transfer through the gateway
func (s *PayoutServiceImpl) Dispatch(ctx context.Context, caller string, retryFailed bool) (*DispatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Only the operator may move funds
	if err := s.checkOperator(ctx, caller); err != nil {
		return nil, err
	}

	// 2. Collect the outbox
	statuses := []models.TransferStatus{models.TransferStatusPending}
	if retryFailed {
		statuses = append(statuses, models.TransferStatusFailed)
	}
	queued, err := s.transfers.FindByStatus(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("failed to find queued transfers: %w", err)
	}

	// 3. Send one by one, recording each outcome before the next
	result := &DispatchResult{Transfers: []*models.Transfer{}}
	for _, t := range queued {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		logger := s.log.WithFields(logrus.Fields{
			"transfer_id": t.ID,
			"round_id":    t.RoundID,
			"kind":        t.Kind,
			"amount":      t.Amount.String(),
		})

		reference, sendErr := s.gateway.Send(ctx, transfergateway.TransferRequest{
			TransferID: t.ID,
			RoundID:    t.RoundID,
			Recipient:  t.Recipient,
			Amount:     t.Amount.String(),
			Memo:       fmt.Sprintf("raffle round %d %s share", t.RoundID, t.Kind),
		})

		t.Attempts++
		t.UpdatedAt = models.Timestamp(s.clock.Now())
		if sendErr != nil {
			t.Status = models.TransferStatusFailed
			t.Error = sendErr.Error()
			result.Failed++
			logger.WithError(sendErr).Warn("Transfer failed")
		} else {
			t.Status = models.TransferStatusSent
			t.Reference = reference
			t.Error = ""
			result.Sent++
			logger.WithField("reference", reference).Info("Transfer sent")
		}
		metrics.RecordTransfer(string(t.Kind), string(t.Status))

		if err := s.transfers.UpdateStatus(ctx, t); err != nil {
			return result, fmt.Errorf("failed to record transfer %s as %s: %w", t.ID, t.Status, err)
		}
		result.Transfers = append(result.Transfers, t)
	}

	return result, nil
}

// Confirm reads the gateway status of every SENT transfer. Settled transfers
// become CONFIRMED, rejected ones FAILED so Dispatch with retryFailed resends
// them. Anything else stays SENT.
func (s *PayoutServiceImpl) Confirm(ctx context.Context, caller string) (*ConfirmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOperator(ctx, caller); err != nil {
		return nil, err
	}

	sent, err := s.transfers.FindByStatus(ctx, models.TransferStatusSent)
	if err != nil {
		return nil, fmt.Errorf("failed to find sent transfers: %w", err)
	}

	result := &ConfirmResult{Transfers: []*models.Transfer{}}
	for _, t := range sent {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger := s.log.WithFields(logrus.Fields{
			"transfer_id": t.ID,
			"round_id":    t.RoundID,
			"reference":   t.Reference,
		})

		status, statusErr := s.gateway.Status(ctx, t.Reference)
		switch {
		case statusErr != nil:
			logger.WithError(statusErr).Warn("Transfer status unavailable")
			result.Pending++
			continue
		case status == transfergateway.StatusSettled:
			t.Status = models.TransferStatusConfirmed
			result.Confirmed++
		case status == transfergateway.StatusRejected:
			t.Status = models.TransferStatusFailed
			t.Error = "rejected by gateway"
			result.Rejected++
		default:
			result.Pending++
			continue
		}

		t.UpdatedAt = models.Timestamp(s.clock.Now())
		metrics.RecordTransfer(string(t.Kind), string(t.Status))
		if err := s.transfers.UpdateStatus(ctx, t); err != nil {
			return result, fmt.Errorf("failed to record transfer %s as %s: %w", t.ID, t.Status, err)
		}
		logger.WithField("status", t.Status).Info("Transfer status updated")
		result.Transfers = append(result.Transfers, t)
	}

	return result, nil
}

func (s *PayoutServiceImpl) checkOperator(ctx context.Context, caller string) error {
	state, err := s.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("failed to load lottery state: %w", err)
	}
	return state.CheckOperator(caller)
}
