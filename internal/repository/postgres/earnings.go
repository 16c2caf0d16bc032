package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
)

// EarningsRepository is a PostgreSQL implementation of
// repository.EarningsRepository over the driver_earnings table.
type EarningsRepository struct {
	q Querier
}

// NewEarningsRepository creates a new PostgreSQL earnings repository.
func NewEarningsRepository(db *sql.DB) *EarningsRepository {
	return &EarningsRepository{q: db}
}

// NewEarningsRepositoryWithTx creates an earnings repository using a
// transaction.
func NewEarningsRepositoryWithTx(tx *sql.Tx) *EarningsRepository {
	return &EarningsRepository{q: tx}
}

// Create persists a new earnings record. The unique constraint on ride_id
// guarantees at most one settlement per ride.
func (r *EarningsRepository) Create(ctx context.Context, rec *domain.EarningsRecord) error {
	query := `
		INSERT INTO driver_earnings (id, ride_id, driver_id, gross_fare, platform_commission, net_earnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		rec.ID, rec.RideID, rec.DriverID, rec.GrossFare, rec.PlatformCommission, rec.NetEarnings, rec.CreatedAt)
	return err
}

// GetByRideID retrieves the settlement for a ride, or nil.
func (r *EarningsRepository) GetByRideID(ctx context.Context, rideID string) (*domain.EarningsRecord, error) {
	query := `
		SELECT id, ride_id, driver_id, gross_fare, platform_commission, net_earnings, created_at
		FROM driver_earnings WHERE ride_id = $1
	`

	var rec domain.EarningsRecord
	err := r.q.QueryRowContext(ctx, query, rideID).Scan(
		&rec.ID, &rec.RideID, &rec.DriverID, &rec.GrossFare, &rec.PlatformCommission, &rec.NetEarnings, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &rec, nil
}

// ListByDriverID retrieves a driver's settlement history, newest first.
func (r *EarningsRepository) ListByDriverID(ctx context.Context, driverID string) ([]*domain.EarningsRecord, error) {
	query := `
		SELECT id, ride_id, driver_id, gross_fare, platform_commission, net_earnings, created_at
		FROM driver_earnings WHERE driver_id = $1
		ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.EarningsRecord
	for rows.Next() {
		var rec domain.EarningsRecord
		if err := rows.Scan(&rec.ID, &rec.RideID, &rec.DriverID, &rec.GrossFare, &rec.PlatformCommission, &rec.NetEarnings, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
