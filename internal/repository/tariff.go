package repository

import (
	"context"

	"trike/internal/domain"
)

// TariffRepository defines the persistence operations for fare settings.
type TariffRepository interface {
	// GetActive returns the active tariff, or nil if none is configured.
	GetActive(ctx context.Context) (*domain.FareTariff, error)

	// Upsert replaces the active tariff. Any previously active row is
	// deactivated in the same statement batch.
	Upsert(ctx context.Context, tariff *domain.FareTariff) error
}
