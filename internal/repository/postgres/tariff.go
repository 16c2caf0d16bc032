package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
)

// TariffRepository is a PostgreSQL implementation of
// repository.TariffRepository over the fare_settings table.
type TariffRepository struct {
	q Querier
}

// NewTariffRepository creates a new PostgreSQL tariff repository.
func NewTariffRepository(db *sql.DB) *TariffRepository {
	return &TariffRepository{q: db}
}

// GetActive returns the active tariff, or nil if none is configured.
func (r *TariffRepository) GetActive(ctx context.Context) (*domain.FareTariff, error) {
	query := `
		SELECT id, base_fare, per_km_rate, per_minute_rate, minimum_fare, surge_multiplier, active
		FROM fare_settings WHERE active = TRUE
		ORDER BY updated_at DESC LIMIT 1
	`

	var t domain.FareTariff
	err := r.q.QueryRowContext(ctx, query).Scan(
		&t.ID, &t.BaseFare, &t.PerKmRate, &t.PerMinuteRate, &t.MinimumFare, &t.SurgeMultiplier, &t.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &t, nil
}

// Upsert replaces the active tariff, deactivating any previous one so at most
// one row stays active.
func (r *TariffRepository) Upsert(ctx context.Context, tariff *domain.FareTariff) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE fare_settings SET active = FALSE WHERE active = TRUE`); err != nil {
		return err
	}

	query := `
		INSERT INTO fare_settings (id, base_fare, per_km_rate, per_minute_rate, minimum_fare, surge_multiplier, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW())
	`
	_, err := r.q.ExecContext(ctx, query,
		tariff.ID, tariff.BaseFare, tariff.PerKmRate, tariff.PerMinuteRate, tariff.MinimumFare, tariff.SurgeMultiplier)
	return err
}
