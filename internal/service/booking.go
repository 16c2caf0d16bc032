package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/fare"
	"trike/internal/geo"
	"trike/internal/redis"
	"trike/internal/repository"
)

const dispatchLockTTL = 10 * time.Second

// BookingLifecycle orchestrates a ride from creation through dispatch, the
// driver's progress calls and settlement. Every transition runs as one
// transaction: the status-guarded ride update, its driver side effects,
// settlement writes and outbox notifications commit together or not at all.
type BookingLifecycle struct {
	store      repository.Store
	rideRepo   repository.RideRepository
	driverRepo repository.DriverRepository
	riderRepo  repository.RiderRepository
	tariffs    *TariffService
	ledger     *EarningsLedger
	notifier   *Notifier
	lockStore  redis.LockStoreInterface
	cacheStore redis.CacheStoreInterface
}

// NewBookingLifecycle creates a new BookingLifecycle. lockStore and
// cacheStore may be nil (tests, degraded mode); the database guards stay
// authoritative without them.
func NewBookingLifecycle(
	store repository.Store,
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	riderRepo repository.RiderRepository,
	tariffs *TariffService,
	ledger *EarningsLedger,
	notifier *Notifier,
	lockStore redis.LockStoreInterface,
	cacheStore redis.CacheStoreInterface,
) *BookingLifecycle {
	return &BookingLifecycle{
		store:      store,
		rideRepo:   rideRepo,
		driverRepo: driverRepo,
		riderRepo:  riderRepo,
		tariffs:    tariffs,
		ledger:     ledger,
		notifier:   notifier,
		lockStore:  lockStore,
		cacheStore: cacheStore,
	}
}

// CreateRideRequest contains the parameters for creating a booking.
type CreateRideRequest struct {
	RiderID        string
	PickupAddress  string
	PickupLat      float64
	PickupLng      float64
	DropoffAddress string
	DropoffLat     float64
	DropoffLng     float64
	PaymentMethod  domain.PaymentMethod
	DistanceText   string // e.g. "5.2 km", optional
	DurationText   string // e.g. "15 mins", optional
}

// CreateRide creates a booking in PENDING and notifies dispatch. A rider may
// only hold one live booking at a time.
func (s *BookingLifecycle) CreateRide(ctx context.Context, actor domain.ActorContext, req CreateRideRequest) (*domain.Ride, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleRider || actor.ID != req.RiderID {
		return nil, ErrForbidden
	}

	if _, err := s.riderRepo.GetByID(ctx, req.RiderID); err != nil {
		return nil, err
	}

	live, err := s.rideRepo.GetLiveByRiderID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}
	if live != nil {
		return nil, ErrRiderHasLiveRide
	}

	distanceKm := fare.ParseQuantity(req.DistanceText)
	if distanceKm == 0 {
		// No usable client estimate; straight-line distance keeps the fare
		// above the bare minimum.
		distanceKm = geo.DistanceKm(req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng)
	}
	durationMins := fare.ParseQuantity(req.DurationText)

	tariff := s.tariffs.Active(ctx)
	now := time.Now()

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		RiderID:        req.RiderID,
		Status:         domain.RideStatusPending,
		PickupAddress:  req.PickupAddress,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DropoffAddress: req.DropoffAddress,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		PaymentMethod:  req.PaymentMethod,
		Fare:           fare.Estimate(distanceKm, durationMins, tariff),
		DistanceKm:     distanceKm,
		DurationMins:   durationMins,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Create(ctx, ride); err != nil {
			return err
		}
		return s.notifier.RideRequested(ctx, r.Outbox, ride)
	})
	if err != nil {
		return nil, err
	}

	return ride, nil
}

func (s *BookingLifecycle) validateCreateRequest(req CreateRideRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}
	if !geo.ValidLatitude(req.PickupLat) || !geo.ValidLongitude(req.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !geo.ValidLatitude(req.DropoffLat) || !geo.ValidLongitude(req.DropoffLng) {
		return ErrInvalidDropoffLocation
	}
	if _, err := ValidatePaymentMethod(string(req.PaymentMethod)); err != nil {
		return err
	}
	return nil
}

// ValidatePaymentMethod validates a payment method string. Empty defaults to
// cash.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch domain.PaymentMethod(method) {
	case domain.PaymentMethodCash, domain.PaymentMethodGCash, domain.PaymentMethodCard:
		return domain.PaymentMethod(method), nil
	case "":
		return domain.PaymentMethodCash, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// AssignDriver moves a PENDING ride to DRIVER_FOUND with the chosen driver
// and notifies both sides. Dispatch only; the driver commits at accept.
func (s *BookingLifecycle) AssignDriver(ctx context.Context, actor domain.ActorContext, rideID, driverID string) (*domain.Ride, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusPending {
		return nil, ErrAlreadyHandled
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.Dispatchable() {
		return nil, ErrDriverUnavailable
	}

	// A driver holds at most one open ride, counting an undecided offer.
	// The lock below only narrows the race window; this check and the
	// guarded driver flip at accept are what actually enforce it.
	open, err := s.rideRepo.GetOpenByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrDriverUnavailable
	}

	// Short dispatch lock so two admins cannot offer the same driver two
	// rides in the same instant. Expires via TTL.
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireDriverLock(ctx, driverID, dispatchLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrDriverUnavailable
		}
	}

	ride.DriverID = driverID
	ride.Status = domain.RideStatusDriverFound
	ride.UpdatedAt = time.Now()

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Update(ctx, ride, domain.RideStatusPending); err != nil {
			return err
		}
		return s.notifier.DriverAssigned(ctx, r.Outbox, ride, driver)
	})
	if err != nil {
		if s.lockStore != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
		}
		return nil, mapConflict(err)
	}

	s.invalidateSnapshot(ctx, ride.ID)
	return ride, nil
}

// RejectRide terminates a PENDING ride from the dispatch side.
func (s *BookingLifecycle) RejectRide(ctx context.Context, actor domain.ActorContext, rideID, reason string) (*domain.Ride, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusPending {
		return nil, ErrAlreadyHandled
	}

	ride.Status = domain.RideStatusRejected
	ride.CancelReason = reason
	ride.UpdatedAt = time.Now()

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Update(ctx, ride, domain.RideStatusPending); err != nil {
			return err
		}
		return s.notifier.RideRejected(ctx, r.Outbox, ride)
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	s.invalidateSnapshot(ctx, ride.ID)
	return ride, nil
}

// AcceptRide confirms a DRIVER_FOUND ride for the acting driver and puts the
// driver on trip. A late or duplicate accept fails as already handled.
func (s *BookingLifecycle) AcceptRide(ctx context.Context, actor domain.ActorContext, rideID string) (*domain.Ride, error) {
	ride, err := s.rideForDriverAction(ctx, actor, rideID, domain.RideStatusDriverFound)
	if err != nil {
		return nil, err
	}

	ride.Status = domain.RideStatusConfirmed
	ride.UpdatedAt = time.Now()

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		// The guarded flip is the arbiter for driver exclusivity: a driver
		// already ON_TRIP on another ride cannot confirm a second one, no
		// matter how the offer slipped past dispatch.
		if err := r.Drivers.UpdateStatusGuarded(ctx, actor.ID, domain.DriverStatusAvailable, domain.DriverStatusOnTrip); err != nil {
			return err
		}
		if err := r.Rides.Update(ctx, ride, domain.RideStatusDriverFound); err != nil {
			return err
		}
		return s.notifier.RideConfirmed(ctx, r.Outbox, ride)
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	if s.lockStore != nil {
		_ = s.lockStore.ReleaseDriverLock(ctx, actor.ID)
	}
	if s.cacheStore != nil {
		_ = s.cacheStore.RemoveAvailableDriver(ctx, actor.ID)
	}
	s.invalidateSnapshot(ctx, ride.ID)
	return ride, nil
}

// DeclineRide returns a DRIVER_FOUND ride to the dispatch pool. Declining is
// not cancellation: the ride goes back to PENDING with the driver cleared so
// dispatch can retry with someone else.
func (s *BookingLifecycle) DeclineRide(ctx context.Context, actor domain.ActorContext, rideID, reason string) (*domain.Ride, error) {
	ride, err := s.rideForDriverAction(ctx, actor, rideID, domain.RideStatusDriverFound)
	if err != nil {
		return nil, err
	}

	driverID := ride.DriverID
	ride.DriverID = ""
	ride.Status = domain.RideStatusPending
	ride.UpdatedAt = time.Now()

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Update(ctx, ride, domain.RideStatusDriverFound); err != nil {
			return err
		}
		if err := r.Drivers.UpdateStatus(ctx, driverID, domain.DriverStatusAvailable); err != nil {
			return err
		}
		if err := r.Drivers.IncrementDeclines(ctx, driverID); err != nil {
			return err
		}
		return s.notifier.DriverDeclined(ctx, r.Outbox, ride, driverID, reason)
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	if s.lockStore != nil {
		_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
	}
	s.invalidateSnapshot(ctx, ride.ID)
	return ride, nil
}

// MarkArrived records the driver at the pickup point.
func (s *BookingLifecycle) MarkArrived(ctx context.Context, actor domain.ActorContext, rideID string) (*domain.Ride, error) {
	ride, err := s.rideForDriverAction(ctx, actor, rideID, domain.RideStatusConfirmed)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ride.Status = domain.RideStatusArrived
	ride.ArrivedAt = now
	ride.UpdatedAt = now

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Update(ctx, ride, domain.RideStatusConfirmed); err != nil {
			return err
		}
		return s.notifier.DriverArrived(ctx, r.Outbox, ride)
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	s.invalidateSnapshot(ctx, ride.ID)
	return ride, nil
}

// StartTrip begins the trip. Valid from CONFIRMED or ARRIVED; the arrival
// call is optional in practice.
func (s *BookingLifecycle) StartTrip(ctx context.Context, actor domain.ActorContext, rideID string) (*domain.Ride, error) {
	ride, err := s.rideForDriverAction(ctx, actor, rideID, domain.RideStatusConfirmed, domain.RideStatusArrived)
	if err != nil {
		return nil, err
	}

	expected := ride.Status
	now := time.Now()
	ride.Status = domain.RideStatusInProgress
	ride.StartedAt = now
	ride.UpdatedAt = now

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Update(ctx, ride, expected); err != nil {
			return err
		}
		return s.notifier.TripStarted(ctx, r.Outbox, ride)
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	s.invalidateSnapshot(ctx, ride.ID)
	return ride, nil
}

// CompleteTrip ends an IN_PROGRESS trip: the final fare is recorded, the
// settlement is written, the driver is freed and the rider is asked to rate.
// A driver-supplied actual fare overrides the estimate; the settlement splits
// the final value.
func (s *BookingLifecycle) CompleteTrip(ctx context.Context, actor domain.ActorContext, rideID string, actualFare float64) (*domain.Ride, *domain.EarningsRecord, error) {
	ride, err := s.rideForDriverAction(ctx, actor, rideID, domain.RideStatusInProgress)
	if err != nil {
		return nil, nil, err
	}

	if actualFare > 0 {
		ride.Fare = domain.RoundCentavos(actualFare)
	}

	now := time.Now()
	ride.Status = domain.RideStatusCompleted
	ride.EndedAt = now
	ride.CompletedAt = now
	ride.UpdatedAt = now

	var record *domain.EarningsRecord
	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Update(ctx, ride, domain.RideStatusInProgress); err != nil {
			return err
		}

		record, err = s.ledger.RecordCompletion(ctx, r, ride)
		if err != nil {
			return err
		}

		if err := r.Drivers.UpdateStatus(ctx, ride.DriverID, domain.DriverStatusAvailable); err != nil {
			return err
		}

		return s.notifier.TripCompleted(ctx, r.Outbox, ride)
	})
	if err != nil {
		return nil, nil, mapConflict(err)
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.AddAvailableDriver(ctx, ride.DriverID)
	}
	s.invalidateSnapshot(ctx, ride.ID)
	return ride, record, nil
}

// CancelRide cancels the rider's live booking. If a driver was assigned they
// are freed and told; dispatch is told either way. When a cancel races a
// driver action, whichever transaction commits first wins and the loser sees
// already-handled.
func (s *BookingLifecycle) CancelRide(ctx context.Context, actor domain.ActorContext, rideID, reason string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleRider || ride.RiderID != actor.ID {
		return nil, repository.ErrNotFound
	}

	if !ride.Status.IsLive() {
		return nil, ErrAlreadyHandled
	}

	expected := ride.Status
	assignedDriver := ride.DriverID
	driverOnTrip := ride.Status == domain.RideStatusConfirmed ||
		ride.Status == domain.RideStatusArrived ||
		ride.Status == domain.RideStatusInProgress

	ride.Status = domain.RideStatusCancelled
	ride.CancelledBy = actor.ID
	ride.CancelReason = reason
	ride.UpdatedAt = time.Now()

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.Update(ctx, ride, expected); err != nil {
			return err
		}
		if assignedDriver != "" && driverOnTrip {
			if err := r.Drivers.UpdateStatus(ctx, assignedDriver, domain.DriverStatusAvailable); err != nil {
				return err
			}
		}
		return s.notifier.RideCancelled(ctx, r.Outbox, ride)
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	if assignedDriver != "" {
		if s.lockStore != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, assignedDriver)
		}
		if s.cacheStore != nil && driverOnTrip {
			_ = s.cacheStore.AddAvailableDriver(ctx, assignedDriver)
		}
	}
	s.invalidateSnapshot(ctx, ride.ID)
	return ride, nil
}

// RateRide records the rider's 1-5 rating of the driver on a completed ride
// and recomputes the driver's aggregate. Resubmission overwrites the previous
// value; the ride counts once either way.
func (s *BookingLifecycle) RateRide(ctx context.Context, actor domain.ActorContext, rideID string, rating int, review string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}

	if actor.Role != domain.RoleRider || ride.RiderID != actor.ID {
		return repository.ErrNotFound
	}

	if ride.Status != domain.RideStatusCompleted || ride.DriverID == "" {
		return ErrNotRatable
	}

	err = s.store.RunInTx(ctx, func(r repository.Repos) error {
		if err := r.Rides.SetRating(ctx, rideID, rating, review); err != nil {
			return err
		}
		return s.ledger.UpdateRating(ctx, r.Drivers, ride.DriverID)
	})
	return mapConflict(err)
}

// GetStatus returns the ride and its assigned driver for polling clients.
// Snapshots are cached briefly so a flood of polls does not hit the database
// on every request.
func (s *BookingLifecycle) GetStatus(ctx context.Context, rideID string) (*redis.RideSnapshot, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetSnapshot(ctx, rideID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	snap := &redis.RideSnapshot{
		RideID:    ride.ID,
		RiderID:   ride.RiderID,
		Status:    string(ride.Status),
		Fare:      ride.Fare,
		UpdatedAt: ride.UpdatedAt.Format(time.RFC3339),
	}

	if ride.DriverID != "" {
		driver, err := s.driverRepo.GetByID(ctx, ride.DriverID)
		if err != nil && err != repository.ErrNotFound {
			return nil, err
		}
		if driver != nil {
			snap.DriverID = driver.ID
			snap.DriverName = driver.Name
			snap.DriverPhone = driver.Phone
			snap.PlateNo = driver.PlateNo
			snap.DriverLat = driver.CurrentLat
			snap.DriverLng = driver.CurrentLng
			snap.DriverRating = driver.Rating
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetSnapshot(ctx, snap)
	}

	return snap, nil
}

// ListRides returns recent rides for the dispatch board, pending first.
func (s *BookingLifecycle) ListRides(ctx context.Context, actor domain.ActorContext) ([]*domain.Ride, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.rideRepo.GetAll(ctx)
}

// rideForDriverAction loads the ride and verifies it is assigned to the
// acting driver in one of the expected statuses. Anything else is a late or
// duplicate action.
func (s *BookingLifecycle) rideForDriverAction(ctx context.Context, actor domain.ActorContext, rideID string, expected ...domain.RideStatus) (*domain.Ride, error) {
	if actor.Role != domain.RoleDriver || actor.ID == "" {
		return nil, ErrForbidden
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != actor.ID {
		return nil, ErrAlreadyHandled
	}

	for _, st := range expected {
		if ride.Status == st {
			return ride, nil
		}
	}
	return nil, ErrAlreadyHandled
}

// mapConflict turns a zero-rows status guard into the user-facing "already
// handled" error. The loser of a concurrent write race lands here.
func mapConflict(err error) error {
	if errors.Is(err, repository.ErrStatusConflict) {
		return ErrAlreadyHandled
	}
	return err
}

func (s *BookingLifecycle) invalidateSnapshot(ctx context.Context, rideID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateSnapshot(ctx, rideID)
}
