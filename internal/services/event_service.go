package services

import (
	"context"
	"fmt"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
)

const maxEventPageSize = 200

// EventServiceImpl reads the lifecycle log
type EventServiceImpl struct {
	eventRepo repositories.EventRepository
}

// NewEventService creates a new EventServiceImpl
func NewEventService(eventRepo repositories.EventRepository) *EventServiceImpl {
	return &EventServiceImpl{
		eventRepo: eventRepo,
	}
}

// ListEvents returns a page of events, newest first
func (s *EventServiceImpl) ListEvents(ctx context.Context, page, limit int) ([]*models.Event, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxEventPageSize {
		limit = maxEventPageSize
	}
	events, err := s.eventRepo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// RoundEvents returns the events of one round, oldest first
func (s *EventServiceImpl) RoundEvents(ctx context.Context, roundID uint32) ([]*models.Event, error) {
	events, err := s.eventRepo.FindByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of round %d: %w", roundID, err)
	}
	return events, nil
}
