package service

import (
	"context"
	"sort"

	"trike/internal/domain"
	"trike/internal/geo"
	"trike/internal/redis"
	"trike/internal/repository"
)

const (
	defaultSearchRadiusKm = 5.0
	maxDirectoryResults   = 10
)

// DriverDirectory answers "which drivers can take this ride" queries. It is
// the single matching path shared by the dispatch board and any automatic
// matcher; read-only.
type DriverDirectory struct {
	locationStore redis.LocationStoreInterface
	driverRepo    repository.DriverRepository
}

// NewDriverDirectory creates a new DriverDirectory.
func NewDriverDirectory(locationStore redis.LocationStoreInterface, driverRepo repository.DriverRepository) *DriverDirectory {
	return &DriverDirectory{
		locationStore: locationStore,
		driverRepo:    driverRepo,
	}
}

// Candidate is one dispatchable driver with their distance from the pickup
// point.
type Candidate struct {
	Driver     *domain.Driver
	DistanceKm float64
}

// FindNearby returns dispatchable drivers within radiusKm of the point,
// nearest first with rating as tiebreak, capped at 10.
//
// Candidates come from the Redis GEO index; each one is re-verified against
// the database (status, verification, position) so a stale index entry never
// surfaces an undispatchable driver.
func (d *DriverDirectory) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Candidate, error) {
	if !geo.ValidLatitude(lat) || !geo.ValidLongitude(lng) {
		return nil, ErrInvalidLocation
	}

	if radiusKm <= 0 {
		radiusKm = defaultSearchRadiusKm
	}

	nearby, err := d.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(nearby))
	for _, loc := range nearby {
		driver, err := d.driverRepo.GetByID(ctx, loc.DriverID)
		if err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return nil, err
		}

		if !driver.Dispatchable() {
			continue
		}

		// Distance from the database coordinates, not the index entry,
		// so a stale GEO row cannot pull in an out-of-range driver.
		distance := geo.DistanceKm(lat, lng, driver.CurrentLat, driver.CurrentLng)
		if distance > radiusKm {
			continue
		}

		candidates = append(candidates, Candidate{Driver: driver, DistanceKm: distance})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].Driver.Rating > candidates[j].Driver.Rating
	})

	if len(candidates) > maxDirectoryResults {
		candidates = candidates[:maxDirectoryResults]
	}

	return candidates, nil
}
