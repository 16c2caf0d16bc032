package service

import (
	"context"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

// TariffService manages the active fare tariff.
type TariffService struct {
	tariffRepo repository.TariffRepository
}

// NewTariffService creates a new TariffService.
func NewTariffService(tariffRepo repository.TariffRepository) *TariffService {
	return &TariffService{tariffRepo: tariffRepo}
}

// Active returns the active tariff, falling back to the hardcoded defaults
// when none is configured or the lookup fails. Fare computation never fails.
func (s *TariffService) Active(ctx context.Context) domain.FareTariff {
	tariff, err := s.tariffRepo.GetActive(ctx)
	if err != nil || tariff == nil {
		return domain.DefaultTariff()
	}
	return *tariff
}

// UpdateTariffRequest contains the parameters for replacing the active tariff.
type UpdateTariffRequest struct {
	BaseFare        float64
	PerKmRate       float64
	PerMinuteRate   float64
	MinimumFare     float64
	SurgeMultiplier float64
}

// Update replaces the active tariff.
func (s *TariffService) Update(ctx context.Context, actor domain.ActorContext, req UpdateTariffRequest) (*domain.FareTariff, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	if req.BaseFare < 0 || req.PerKmRate < 0 || req.PerMinuteRate < 0 || req.MinimumFare < 0 {
		return nil, ErrInvalidTariff
	}

	// The multiplier floor lives here, not in the calculator: estimates
	// always apply the stored value as-is.
	surge := req.SurgeMultiplier
	if surge < 1.0 {
		surge = 1.0
	}

	tariff := &domain.FareTariff{
		ID:              uuid.New().String(),
		BaseFare:        req.BaseFare,
		PerKmRate:       req.PerKmRate,
		PerMinuteRate:   req.PerMinuteRate,
		MinimumFare:     req.MinimumFare,
		SurgeMultiplier: surge,
		Active:          true,
	}

	if err := s.tariffRepo.Upsert(ctx, tariff); err != nil {
		return nil, err
	}

	return tariff, nil
}
