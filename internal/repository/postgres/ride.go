package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
	"trike/internal/repository"
)

const rideColumns = `id, rider_id, driver_id, status, pickup_address, pickup_lat, pickup_lng,
	dropoff_address, dropoff_lat, dropoff_lng, payment_method, fare, distance_km, duration_mins,
	rating, review, cancelled_by, cancel_reason, created_at, updated_at,
	arrived_at, started_at, ended_at, completed_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository
// over the rides table.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		nullString(ride.DriverID),
		ride.Status,
		ride.PickupAddress,
		ride.PickupLat,
		ride.PickupLng,
		ride.DropoffAddress,
		ride.DropoffLat,
		ride.DropoffLng,
		ride.PaymentMethod,
		ride.Fare,
		ride.DistanceKm,
		ride.DurationMins,
		nullInt(ride.Rating),
		nullString(ride.Review),
		nullString(ride.CancelledBy),
		nullString(ride.CancelReason),
		ride.CreatedAt,
		ride.UpdatedAt,
		nullTime(ride.ArrivedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.EndedAt),
		nullTime(ride.CompletedAt),
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// GetAll retrieves recent rides for the dispatch board, pending first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		ORDER BY (status = 'PENDING') DESC, created_at DESC
		LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// GetLiveByRiderID returns the rider's ride in a live status, or nil.
func (r *RideRepository) GetLiveByRiderID(ctx context.Context, riderID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE rider_id = $1
		  AND status IN ('PENDING', 'DRIVER_FOUND', 'CONFIRMED', 'ARRIVED', 'IN_PROGRESS')
		LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, riderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return ride, nil
}

// GetActiveByDriverID returns the driver's ride in CONFIRMED, ARRIVED or
// IN_PROGRESS, or nil.
func (r *RideRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE driver_id = $1
		  AND status IN ('CONFIRMED', 'ARRIVED', 'IN_PROGRESS')
		LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return ride, nil
}

// GetOpenByDriverID returns the driver's ride in any non-terminal status that
// names the driver, or nil.
func (r *RideRepository) GetOpenByDriverID(ctx context.Context, driverID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE driver_id = $1
		  AND status IN ('DRIVER_FOUND', 'CONFIRMED', 'ARRIVED', 'IN_PROGRESS')
		LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return ride, nil
}

// Update writes the ride's mutable fields guarded by the expected current
// status. A concurrent writer that already moved the ride makes this affect
// zero rows, surfaced as ErrStatusConflict.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2, fare = $3, cancelled_by = $4, cancel_reason = $5,
		    updated_at = $6, arrived_at = $7, started_at = $8, ended_at = $9, completed_at = $10
		WHERE id = $11 AND status = $12
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(ride.DriverID),
		ride.Status,
		ride.Fare,
		nullString(ride.CancelledBy),
		nullString(ride.CancelReason),
		ride.UpdatedAt,
		nullTime(ride.ArrivedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.EndedAt),
		nullTime(ride.CompletedAt),
		ride.ID,
		expected,
	)
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

// SetRating records the rider's rating on a completed ride. Last write wins.
func (r *RideRepository) SetRating(ctx context.Context, rideID string, rating int, review string) error {
	query := `
		UPDATE rides SET rating = $1, review = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'COMPLETED'
	`

	result, err := r.q.ExecContext(ctx, query, rating, nullString(review), rideID)
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

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, review, cancelledBy, cancelReason sql.NullString
	var rating sql.NullInt64
	var arrivedAt, startedAt, endedAt, completedAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&driverID,
		&ride.Status,
		&ride.PickupAddress,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.DropoffAddress,
		&ride.DropoffLat,
		&ride.DropoffLng,
		&ride.PaymentMethod,
		&ride.Fare,
		&ride.DistanceKm,
		&ride.DurationMins,
		&rating,
		&review,
		&cancelledBy,
		&cancelReason,
		&ride.CreatedAt,
		&ride.UpdatedAt,
		&arrivedAt,
		&startedAt,
		&endedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.DriverID = driverID.String
	ride.Rating = int(rating.Int64)
	ride.Review = review.String
	ride.CancelledBy = cancelledBy.String
	ride.CancelReason = cancelReason.String
	if arrivedAt.Valid {
		ride.ArrivedAt = arrivedAt.Time
	}
	if startedAt.Valid {
		ride.StartedAt = startedAt.Time
	}
	if endedAt.Valid {
		ride.EndedAt = endedAt.Time
	}
	if completedAt.Valid {
		ride.CompletedAt = completedAt.Time
	}

	return &ride, nil
}
