package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
	"trike/internal/repository"
)

const driverColumns = `id, COALESCE(name, ''), COALESCE(phone, ''), COALESCE(plate_no, ''), status,
	verified, current_lat, current_lng, rating, total_ratings, total_trips, total_declines, total_earnings, last_seen_at`

// DriverRepository is a PostgreSQL implementation of
// repository.DriverRepository over the tricycle_drivers table.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO tricycle_drivers (id, name, phone, plate_no, status, verified, rating, total_ratings, total_trips, total_declines, total_earnings)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, 0, 0)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.Phone, driver.PlateNo, driver.Status, driver.Verified)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM tricycle_drivers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM tricycle_drivers WHERE phone = $1`
	return r.getOne(ctx, query, phone)
}

func (r *DriverRepository) getOne(ctx context.Context, query string, arg any) (*domain.Driver, error) {
	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM tricycle_drivers ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE tricycle_drivers SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateStatusGuarded flips the driver's status only when the current status
// matches from. A driver already moved by a concurrent writer makes this
// affect zero rows, surfaced as ErrStatusConflict.
func (r *DriverRepository) UpdateStatusGuarded(ctx context.Context, id string, from, to domain.DriverStatus) error {
	query := `UPDATE tricycle_drivers SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrStatusConflict
	}

	return nil
}

// UpdatePosition stores the driver's last known location.
func (r *DriverRepository) UpdatePosition(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE tricycle_drivers SET current_lat = $1, current_lng = $2, last_seen_at = NOW() WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, lat, lng, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateAggregates adds one completed trip and its net earnings to the
// driver's counters.
func (r *DriverRepository) UpdateAggregates(ctx context.Context, id string, netEarnings float64) error {
	query := `
		UPDATE tricycle_drivers
		SET total_trips = total_trips + 1, total_earnings = total_earnings + $1
		WHERE id = $2
	`

	result, err := r.q.ExecContext(ctx, query, netEarnings, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IncrementDeclines bumps the driver's decline counter.
func (r *DriverRepository) IncrementDeclines(ctx context.Context, id string) error {
	query := `UPDATE tricycle_drivers SET total_declines = total_declines + 1 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// RecomputeRating recalculates the driver's aggregate rating from completed,
// rated rides. Safe to call repeatedly.
func (r *DriverRepository) RecomputeRating(ctx context.Context, id string) error {
	query := `
		UPDATE tricycle_drivers d
		SET rating = COALESCE(agg.avg_rating, 0),
		    total_ratings = COALESCE(agg.rating_count, 0)
		FROM (
			SELECT AVG(rating)::float8 AS avg_rating, COUNT(rating) AS rating_count
			FROM rides
			WHERE driver_id = $1 AND status = 'COMPLETED' AND rating IS NOT NULL
		) agg
		WHERE d.id = $1
	`

	_, err := r.q.ExecContext(ctx, query, id)
	return err
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var lat, lng sql.NullFloat64
	var lastSeen sql.NullTime

	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.PlateNo,
		&driver.Status,
		&driver.Verified,
		&lat,
		&lng,
		&driver.Rating,
		&driver.TotalRatings,
		&driver.TotalTrips,
		&driver.TotalDeclines,
		&driver.TotalEarnings,
		&lastSeen,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		driver.CurrentLat = lat.Float64
		driver.CurrentLng = lng.Float64
		driver.HasPosition = true
	}
	if lastSeen.Valid {
		driver.LastSeenAt = lastSeen.Time
	}

	return &driver, nil
}
