package repository

import (
	"context"

	"trike/internal/domain"
)

// EarningsRepository defines the persistence operations for settlement
// records.
type EarningsRepository interface {
	// Create persists a new earnings record. Records are immutable after
	// creation.
	Create(ctx context.Context, rec *domain.EarningsRecord) error

	// GetByRideID retrieves the earnings record for a ride, or nil if the
	// ride has not settled.
	GetByRideID(ctx context.Context, rideID string) (*domain.EarningsRecord, error)

	// ListByDriverID retrieves a driver's settlement history, newest first.
	ListByDriverID(ctx context.Context, driverID string) ([]*domain.EarningsRecord, error)
}
