package repository

import (
	"context"

	"trike/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateStatusGuarded flips the driver's status only when the current
	// status matches from. Zero rows affected yields ErrStatusConflict; the
	// guard is what keeps a driver on at most one trip at a time.
	UpdateStatusGuarded(ctx context.Context, id string, from, to domain.DriverStatus) error

	// UpdatePosition stores the driver's last known location.
	UpdatePosition(ctx context.Context, id string, lat, lng float64) error

	// UpdateAggregates adds one completed trip and its net earnings to the
	// driver's counters.
	UpdateAggregates(ctx context.Context, id string, netEarnings float64) error

	// IncrementDeclines bumps the driver's decline counter, the input to the
	// dispatcher's cancellation-rate view.
	IncrementDeclines(ctx context.Context, id string) error

	// RecomputeRating recalculates the driver's average rating and rating
	// count from that driver's completed, rated rides. Idempotent.
	RecomputeRating(ctx context.Context, id string) error
}
