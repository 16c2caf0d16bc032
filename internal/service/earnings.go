package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

// EarningsLedger settles completed trips and maintains driver aggregates.
type EarningsLedger struct {
	earningsRepo repository.EarningsRepository
	driverRepo   repository.DriverRepository
}

// NewEarningsLedger creates a new EarningsLedger.
func NewEarningsLedger(earningsRepo repository.EarningsRepository, driverRepo repository.DriverRepository) *EarningsLedger {
	return &EarningsLedger{
		earningsRepo: earningsRepo,
		driverRepo:   driverRepo,
	}
}

// RecordCompletion writes the immutable settlement for a completed ride and
// bumps the driver's trip and earnings counters. It runs against the
// transaction-scoped repositories of the completion transition, so a failed
// settlement rolls the whole completion back.
func (l *EarningsLedger) RecordCompletion(ctx context.Context, r repository.Repos, ride *domain.Ride) (*domain.EarningsRecord, error) {
	existing, err := r.Earnings.GetByRideID(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Already settled; completion is idempotent on retry.
		return existing, nil
	}

	rec := domain.NewEarningsRecord(uuid.New().String(), ride.ID, ride.DriverID, ride.Fare, time.Now())

	if err := r.Earnings.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := r.Drivers.UpdateAggregates(ctx, ride.DriverID, rec.NetEarnings); err != nil {
		return nil, err
	}

	return rec, nil
}

// UpdateRating recomputes the driver's aggregate rating from their completed,
// rated rides. Idempotent; resubmitted ratings count each ride once.
func (l *EarningsLedger) UpdateRating(ctx context.Context, driverRepo repository.DriverRepository, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	return driverRepo.RecomputeRating(ctx, driverID)
}

// ListDriverEarnings retrieves a driver's settlement history.
func (l *EarningsLedger) ListDriverEarnings(ctx context.Context, driverID string) ([]*domain.EarningsRecord, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return l.earningsRepo.ListByDriverID(ctx, driverID)
}
