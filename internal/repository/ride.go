package repository

import (
	"context"

	"trike/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves recent rides, pending first, for the dispatch board.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// GetLiveByRiderID returns the rider's ride in a live status, or nil.
	GetLiveByRiderID(ctx context.Context, riderID string) (*domain.Ride, error)

	// GetActiveByDriverID returns the driver's ride in CONFIRMED, ARRIVED or
	// IN_PROGRESS, or nil.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Ride, error)

	// GetOpenByDriverID returns the driver's ride in any non-terminal status
	// that names the driver, including an undecided DRIVER_FOUND offer, or
	// nil. Dispatch uses it to keep a driver on at most one open ride.
	GetOpenByDriverID(ctx context.Context, driverID string) (*domain.Ride, error)

	// Update writes the ride's mutable fields guarded by its expected current
	// status. Zero rows affected yields ErrStatusConflict so concurrent
	// writers cannot both succeed.
	Update(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error

	// SetRating records the rider's rating and review on a completed ride.
	// Resubmission overwrites (last write wins).
	SetRating(ctx context.Context, rideID string, rating int, review string) error
}
