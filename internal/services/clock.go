package services

import (
	"time"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// Clock supplies the current time to the lifecycle
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time at storage precision
func (SystemClock) Now() time.Time {
	return models.Timestamp(time.Now())
}
