package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/geo"
	"trike/internal/redis"
	"trike/internal/repository"
)

// DriverService handles driver registration and presence: the location
// heartbeat that keeps the GEO index fresh and the offline switch.
type DriverService struct {
	driverRepo    repository.DriverRepository
	rideRepo      repository.RideRepository
	locationStore redis.LocationStoreInterface
	cacheStore    redis.CacheStoreInterface
}

// NewDriverService creates a new DriverService. locationStore and cacheStore
// may be nil in tests.
func NewDriverService(
	driverRepo repository.DriverRepository,
	rideRepo repository.RideRepository,
	locationStore redis.LocationStoreInterface,
	cacheStore redis.CacheStoreInterface,
) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		rideRepo:      rideRepo,
		locationStore: locationStore,
		cacheStore:    cacheStore,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name    string
	Phone   string
	PlateNo string
}

// Register creates a driver. New drivers start offline and unverified; an
// operator verifies the franchise papers before the driver can take trips.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.PlateNo = strings.TrimSpace(req.PlateNo)

	if req.Name == "" || req.Phone == "" || req.PlateNo == "" {
		return nil, ErrInvalidDriverProfile
	}

	existing, err := s.driverRepo.GetByPhone(ctx, req.Phone)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneTaken
	}

	driver := &domain.Driver{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Phone:      req.Phone,
		PlateNo:    req.PlateNo,
		Status:     domain.DriverStatusOffline,
		LastSeenAt: time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// List returns all drivers for the dispatch board.
func (s *DriverService) List(ctx context.Context, actor domain.ActorContext) ([]*domain.Driver, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.driverRepo.GetAll(ctx)
}

// GetByID returns one driver.
func (s *DriverService) GetByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// UpdateLocation is the driver's heartbeat. It writes the position to the
// database and the GEO index, and an offline driver sending a heartbeat comes
// back online as available. A driver on a trip stays on the trip.
func (s *DriverService) UpdateLocation(ctx context.Context, actor domain.ActorContext, driverID string, lat, lng float64) (*domain.Driver, error) {
	if actor.Role != domain.RoleDriver || actor.ID != driverID {
		return nil, ErrForbidden
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !geo.ValidLatitude(lat) || !geo.ValidLongitude(lng) {
		return nil, ErrInvalidLocation
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if err := s.driverRepo.UpdatePosition(ctx, driverID, lat, lng); err != nil {
		return nil, err
	}

	if driver.Status == domain.DriverStatusOffline {
		if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusAvailable); err != nil {
			return nil, err
		}
		driver.Status = domain.DriverStatusAvailable
		if s.cacheStore != nil {
			_ = s.cacheStore.AddAvailableDriver(ctx, driverID)
		}
	}

	if s.locationStore != nil {
		if err := s.locationStore.UpdateLocation(ctx, driverID, lat, lng); err != nil {
			return nil, err
		}
	}

	driver.CurrentLat = lat
	driver.CurrentLng = lng
	driver.HasPosition = true
	driver.LastSeenAt = time.Now()
	return driver, nil
}

// GoOffline takes the driver off the dispatch pool. Refused while the driver
// has an active ride; finish or lose the trip first.
func (s *DriverService) GoOffline(ctx context.Context, actor domain.ActorContext, driverID string) error {
	if actor.Role != domain.RoleDriver || actor.ID != driverID {
		return ErrForbidden
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return err
	}

	active, err := s.rideRepo.GetActiveByDriverID(ctx, driverID)
	if err != nil {
		return err
	}
	if active != nil {
		return ErrDriverOnActiveRide
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOffline); err != nil {
		return err
	}

	if s.locationStore != nil {
		_ = s.locationStore.RemoveLocation(ctx, driverID)
	}
	if s.cacheStore != nil {
		_ = s.cacheStore.RemoveAvailableDriver(ctx, driverID)
	}

	return nil
}
