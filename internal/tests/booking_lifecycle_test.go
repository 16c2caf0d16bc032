package tests

import (
	"context"
	"errors"
	"testing"

	"trike/internal/domain"
	"trike/internal/repository"
	"trike/internal/service"
)

// ──────────────────────────────────────────────
// BOOKING LIFECYCLE
// ──────────────────────────────────────────────

type lifecycleFixture struct {
	rides    *MockRideRepository
	drivers  *MockDriverRepository
	riders   *MockRiderRepository
	earnings *MockEarningsRepository
	outbox   *MockOutboxRepository
	locks    *MockLockStore
	cache    *MockCacheStore
	svc      *service.BookingLifecycle
}

func newLifecycleFixture() *lifecycleFixture {
	rides := NewMockRideRepository()
	drivers := NewMockDriverRepository()
	riders := NewMockRiderRepository()
	earnings := NewMockEarningsRepository()
	outbox := NewMockOutboxRepository()
	locks := NewMockLockStore()
	cache := NewMockCacheStore()

	store := NewMockStore(rides, drivers, earnings, outbox)
	tariffs := service.NewTariffService(NewMockTariffRepository())
	ledger := service.NewEarningsLedger(earnings, drivers)

	return &lifecycleFixture{
		rides:    rides,
		drivers:  drivers,
		riders:   riders,
		earnings: earnings,
		outbox:   outbox,
		locks:    locks,
		cache:    cache,
		svc: service.NewBookingLifecycle(
			store, rides, drivers, riders, tariffs, ledger,
			service.NewNotifier(), locks, cache,
		),
	}
}

func (f *lifecycleFixture) addRider(id string) {
	f.riders.AddRider(&domain.Rider{ID: id, Name: "Test Rider", Phone: "0917" + id})
}

func (f *lifecycleFixture) addDriver(id string, status domain.DriverStatus) {
	f.drivers.AddDriver(&domain.Driver{
		ID:          id,
		Name:        "Test Driver",
		Phone:       "0918" + id,
		PlateNo:     "TRK-" + id,
		Status:      status,
		Verified:    true,
		CurrentLat:  14.5995,
		CurrentLng:  120.9842,
		HasPosition: true,
	})
}

func validCreateRequest(riderID string) service.CreateRideRequest {
	return service.CreateRideRequest{
		RiderID:        riderID,
		PickupAddress:  "Blumentritt Market",
		PickupLat:      14.5995,
		PickupLng:      120.9842,
		DropoffAddress: "San Juan City Hall",
		DropoffLat:     14.6019,
		DropoffLng:     121.0355,
		PaymentMethod:  domain.PaymentMethodCash,
		DistanceText:   "5 km",
		DurationText:   "15 mins",
	}
}

func TestCreateRide_StartsPendingWithEstimate(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addRider("rider-1")

	ride, err := f.svc.CreateRide(context.Background(), domain.RiderActor("rider-1"), validCreateRequest("rider-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected status %s, got %s", domain.RideStatusPending, ride.Status)
	}
	if ride.DriverID != "" {
		t.Errorf("new booking must have no driver, got %q", ride.DriverID)
	}
	// 50 base + 5km*15 + 15min*2 at default rates.
	if ride.Fare != 155.00 {
		t.Errorf("expected fare 155.00, got %.2f", ride.Fare)
	}

	if got := f.outbox.EventsOfType(domain.EventRideRequested); len(got) != 1 {
		t.Errorf("expected 1 dispatch event, got %d", len(got))
	}
}

func TestCreateRide_SecondLiveBookingRejected(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addRider("rider-1")

	if _, err := f.svc.CreateRide(context.Background(), domain.RiderActor("rider-1"), validCreateRequest("rider-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.CreateRide(context.Background(), domain.RiderActor("rider-1"), validCreateRequest("rider-1"))
	if !errors.Is(err, service.ErrRiderHasLiveRide) {
		t.Errorf("expected ErrRiderHasLiveRide, got %v", err)
	}
	if f.rides.CountRides() != 1 {
		t.Errorf("expected 1 ride, got %d", f.rides.CountRides())
	}
}

func TestCreateRide_AllowedAfterPreviousRideEnds(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addRider("rider-1")

	f.rides.AddRide(&domain.Ride{
		ID:      "ride-done",
		RiderID: "rider-1",
		Status:  domain.RideStatusCompleted,
	})

	if _, err := f.svc.CreateRide(context.Background(), domain.RiderActor("rider-1"), validCreateRequest("rider-1")); err != nil {
		t.Fatalf("completed ride must not block a new booking: %v", err)
	}
}

func TestCreateRide_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addRider("rider-1")

	req := validCreateRequest("rider-1")
	req.PickupLat = 91.0

	_, err := f.svc.CreateRide(context.Background(), domain.RiderActor("rider-1"), req)
	if !errors.Is(err, service.ErrInvalidPickupLocation) {
		t.Errorf("expected ErrInvalidPickupLocation, got %v", err)
	}
}

func TestAssignDriver_MovesToDriverFound(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusPending})

	ride, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusDriverFound {
		t.Errorf("expected status %s, got %s", domain.RideStatusDriverFound, ride.Status)
	}
	if ride.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", ride.DriverID)
	}
	// Assignment is an offer. The driver stays available until accept.
	if got := f.drivers.GetDriver("driver-1").Status; got != domain.DriverStatusAvailable {
		t.Errorf("driver must stay %s until accepting, got %s", domain.DriverStatusAvailable, got)
	}
	if !f.locks.IsLocked("driver-1") {
		t.Error("expected dispatch lock held for driver-1")
	}
	if got := f.outbox.EventsOfType(domain.EventDriverAssigned); len(got) != 2 {
		t.Errorf("expected events for driver and rider, got %d", len(got))
	}
}

func TestAssignDriver_UnavailableDriverRefused(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusPending})

	_, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Errorf("expected ErrDriverUnavailable, got %v", err)
	}
}

func TestAssignDriver_NonPendingRideAlreadyHandled(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusCancelled})

	_, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrAlreadyHandled) {
		t.Errorf("expected ErrAlreadyHandled, got %v", err)
	}
}

func TestAssignDriver_LockedDriverRefused(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusPending})
	f.rides.AddRide(&domain.Ride{ID: "ride-2", RiderID: "rider-2", Status: domain.RideStatusPending})

	if _, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-2", "driver-1")
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Errorf("expected ErrDriverUnavailable while lock held, got %v", err)
	}
}

func TestAssignDriver_OpenOfferBlocksSecondAssignment(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusPending})
	f.rides.AddRide(&domain.Ride{ID: "ride-2", RiderID: "rider-2", Status: domain.RideStatusPending})

	if _, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The dispatch lock aging out must not reopen the driver while the
	// first offer is still undecided.
	if err := f.locks.ReleaseDriverLock(context.Background(), "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-2", "driver-1")
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Errorf("expected ErrDriverUnavailable while offer open, got %v", err)
	}
	if got := f.rides.GetRide("ride-2").Status; got != domain.RideStatusPending {
		t.Errorf("expected ride-2 to stay %s, got %s", domain.RideStatusPending, got)
	}
}

func TestAcceptRide_ConfirmsAndPutsDriverOnTrip(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusDriverFound,
	})

	ride, err := f.svc.AcceptRide(context.Background(), domain.DriverActor("driver-1"), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusConfirmed {
		t.Errorf("expected status %s, got %s", domain.RideStatusConfirmed, ride.Status)
	}
	if got := f.drivers.GetDriver("driver-1").Status; got != domain.DriverStatusOnTrip {
		t.Errorf("expected driver %s, got %s", domain.DriverStatusOnTrip, got)
	}
	if f.locks.IsLocked("driver-1") {
		t.Error("expected dispatch lock released on accept")
	}
}

func TestAcceptRide_OnTripDriverCannotConfirmSecondRide(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	// Two offers naming the same driver, as a lapsed dispatch lock can
	// produce. Accepting the first puts the driver on trip; the second
	// accept must lose to the driver status guard.
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusDriverFound,
	})
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-2",
		RiderID:  "rider-2",
		DriverID: "driver-1",
		Status:   domain.RideStatusDriverFound,
	})

	if _, err := f.svc.AcceptRide(context.Background(), domain.DriverActor("driver-1"), "ride-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.AcceptRide(context.Background(), domain.DriverActor("driver-1"), "ride-2")
	if !errors.Is(err, service.ErrAlreadyHandled) {
		t.Errorf("expected ErrAlreadyHandled for second accept, got %v", err)
	}

	if got := f.rides.GetRide("ride-1").Status; got != domain.RideStatusConfirmed {
		t.Errorf("expected ride-1 %s, got %s", domain.RideStatusConfirmed, got)
	}
	if got := f.rides.GetRide("ride-2").Status; got != domain.RideStatusDriverFound {
		t.Errorf("expected ride-2 to stay %s, got %s", domain.RideStatusDriverFound, got)
	}
	if got := f.drivers.GetDriver("driver-1").Status; got != domain.DriverStatusOnTrip {
		t.Errorf("expected driver %s, got %s", domain.DriverStatusOnTrip, got)
	}
}

func TestAcceptRide_CancelThenReassignSameDriver(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusPending})
	f.rides.AddRide(&domain.Ride{ID: "ride-2", RiderID: "rider-2", Status: domain.RideStatusPending})

	if _, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.AcceptRide(context.Background(), domain.DriverActor("driver-1"), "ride-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.CancelRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", "changed plans"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The freed driver must be assignable immediately, not after the
	// dispatch lock TTL.
	ride, err := f.svc.AssignDriver(context.Background(), domain.AdminActor(), "ride-2", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusDriverFound {
		t.Errorf("expected status %s, got %s", domain.RideStatusDriverFound, ride.Status)
	}
}

func TestAcceptRide_WrongDriverAlreadyHandled(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-2", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusDriverFound,
	})

	_, err := f.svc.AcceptRide(context.Background(), domain.DriverActor("driver-2"), "ride-1")
	if !errors.Is(err, service.ErrAlreadyHandled) {
		t.Errorf("expected ErrAlreadyHandled, got %v", err)
	}
}

func TestAcceptRide_AfterCancelAlreadyHandled(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusDriverFound,
	})

	if _, err := f.svc.CancelRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", "changed plans"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.AcceptRide(context.Background(), domain.DriverActor("driver-1"), "ride-1")
	if !errors.Is(err, service.ErrAlreadyHandled) {
		t.Errorf("expected ErrAlreadyHandled after cancel, got %v", err)
	}
}

func TestDeclineRide_ReturnsBookingToPool(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusDriverFound,
	})

	ride, err := f.svc.DeclineRide(context.Background(), domain.DriverActor("driver-1"), "ride-1", "too far")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusPending {
		t.Errorf("declined booking must return to %s, got %s", domain.RideStatusPending, ride.Status)
	}
	if ride.DriverID != "" {
		t.Errorf("declined booking must have driver cleared, got %q", ride.DriverID)
	}

	driver := f.drivers.GetDriver("driver-1")
	if driver.Status != domain.DriverStatusAvailable {
		t.Errorf("declining driver must be %s, got %s", domain.DriverStatusAvailable, driver.Status)
	}
	if driver.TotalDeclines != 1 {
		t.Errorf("expected 1 decline recorded, got %d", driver.TotalDeclines)
	}
	if f.locks.IsLocked("driver-1") {
		t.Error("dispatch lock must be released after decline")
	}
	if got := f.outbox.EventsOfType(domain.EventDriverDeclined); len(got) != 2 {
		t.Errorf("expected rider and dispatch events, got %d", len(got))
	}
}

func TestStartTrip_FromConfirmedSkippingArrival(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusConfirmed,
	})

	ride, err := f.svc.StartTrip(context.Background(), domain.DriverActor("driver-1"), "ride-1")
	if err != nil {
		t.Fatalf("arrival call is optional, start must work from confirmed: %v", err)
	}
	if ride.Status != domain.RideStatusInProgress {
		t.Errorf("expected status %s, got %s", domain.RideStatusInProgress, ride.Status)
	}
	if ride.StartedAt.IsZero() {
		t.Error("expected StartedAt set")
	}
}

func TestMarkArrivedThenStart(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusConfirmed,
	})

	ride, err := f.svc.MarkArrived(context.Background(), domain.DriverActor("driver-1"), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusArrived {
		t.Errorf("expected status %s, got %s", domain.RideStatusArrived, ride.Status)
	}

	ride, err = f.svc.StartTrip(context.Background(), domain.DriverActor("driver-1"), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusInProgress {
		t.Errorf("expected status %s, got %s", domain.RideStatusInProgress, ride.Status)
	}
}

func TestCompleteTrip_SettlesEightyTwenty(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusInProgress,
		Fare:     120.00,
	})

	ride, record, err := f.svc.CompleteTrip(context.Background(), domain.DriverActor("driver-1"), "ride-1", 200.00)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.RideStatusCompleted, ride.Status)
	}
	if ride.Fare != 200.00 {
		t.Errorf("actual fare must override the estimate, got %.2f", ride.Fare)
	}
	if record == nil {
		t.Fatal("expected a settlement record")
	}
	if record.NetEarnings != 160.00 {
		t.Errorf("expected driver share 160.00, got %.2f", record.NetEarnings)
	}
	if record.PlatformCommission != 40.00 {
		t.Errorf("expected commission 40.00, got %.2f", record.PlatformCommission)
	}

	driver := f.drivers.GetDriver("driver-1")
	if driver.Status != domain.DriverStatusAvailable {
		t.Errorf("completed driver must be %s, got %s", domain.DriverStatusAvailable, driver.Status)
	}
	if driver.TotalTrips != 1 {
		t.Errorf("expected 1 trip counted, got %d", driver.TotalTrips)
	}
	if driver.TotalEarnings != 160.00 {
		t.Errorf("expected total earnings 160.00, got %.2f", driver.TotalEarnings)
	}
	if !f.cache.IsAvailable("driver-1") {
		t.Error("driver must be back in the available set")
	}
}

func TestCompleteTrip_ZeroActualFareKeepsEstimate(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusInProgress,
		Fare:     120.00,
	})

	ride, record, err := f.svc.CompleteTrip(context.Background(), domain.DriverActor("driver-1"), "ride-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Fare != 120.00 {
		t.Errorf("estimate must stand without an actual fare, got %.2f", ride.Fare)
	}
	if record.GrossFare != 120.00 {
		t.Errorf("settlement must split the estimate, got %.2f", record.GrossFare)
	}
}

func TestCompleteTrip_DoubleCompletionSettlesOnce(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusInProgress,
		Fare:     100.00,
	})

	if _, _, err := f.svc.CompleteTrip(context.Background(), domain.DriverActor("driver-1"), "ride-1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err := f.svc.CompleteTrip(context.Background(), domain.DriverActor("driver-1"), "ride-1", 0)
	if !errors.Is(err, service.ErrAlreadyHandled) {
		t.Errorf("expected ErrAlreadyHandled, got %v", err)
	}

	if f.earnings.CountRecords() != 1 {
		t.Errorf("expected exactly 1 settlement record, got %d", f.earnings.CountRecords())
	}
	if got := f.drivers.GetDriver("driver-1").TotalTrips; got != 1 {
		t.Errorf("expected 1 trip counted, got %d", got)
	}
}

func TestCancelRide_PendingTouchesNoDriver(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusPending})

	ride, err := f.svc.CancelRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", "changed plans")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCancelled {
		t.Errorf("expected status %s, got %s", domain.RideStatusCancelled, ride.Status)
	}
	if got := f.drivers.UpdateStatusCallCount; got != 0 {
		t.Errorf("cancelling a pending booking must not touch any driver, got %d status updates", got)
	}
}

func TestCancelRide_ConfirmedFreesDriver(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusConfirmed,
	})

	ride, err := f.svc.CancelRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", "waited too long")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The ride keeps its driver for the audit trail even though it ended.
	if ride.DriverID != "driver-1" {
		t.Errorf("cancelled ride must keep driver for history, got %q", ride.DriverID)
	}
	if got := f.drivers.GetDriver("driver-1").Status; got != domain.DriverStatusAvailable {
		t.Errorf("expected driver %s, got %s", domain.DriverStatusAvailable, got)
	}
	if got := f.outbox.EventsOfType(domain.EventRideCancelled); len(got) != 2 {
		t.Errorf("expected driver and dispatch events, got %d", len(got))
	}
}

func TestCancelRide_TerminalRideAlreadyHandled(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusCompleted})

	_, err := f.svc.CancelRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", "oops")
	if !errors.Is(err, service.ErrAlreadyHandled) {
		t.Errorf("expected ErrAlreadyHandled, got %v", err)
	}
}

func TestCancelRide_StrangerSeesNotFound(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rides.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusPending})

	_, err := f.svc.CancelRide(context.Background(), domain.RiderActor("rider-2"), "ride-1", "not mine")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("another rider's booking must look like it does not exist, got %v", err)
	}
}

func TestRateRide_RecomputesDriverAverage(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusCompleted,
	})
	f.drivers.SetRatings("driver-1", []int{5, 4})

	err := f.svc.RateRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", 5, "smooth ride")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.rides.GetRide("ride-1").Rating; got != 5 {
		t.Errorf("expected rating 5 stored, got %d", got)
	}

	driver := f.drivers.GetDriver("driver-1")
	if driver.Rating != 4.5 {
		t.Errorf("expected recomputed average 4.5, got %.2f", driver.Rating)
	}
	if driver.TotalRatings != 2 {
		t.Errorf("expected 2 ratings counted, got %d", driver.TotalRatings)
	}
}

func TestRateRide_ResubmissionOverwrites(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusAvailable)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusCompleted,
	})

	if err := f.svc.RateRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", 2, "bumpy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.svc.RateRide(context.Background(), domain.RiderActor("rider-1"), "ride-1", 4, "actually fine"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride := f.rides.GetRide("ride-1")
	if ride.Rating != 4 {
		t.Errorf("last write must win, got %d", ride.Rating)
	}
	if ride.Review != "actually fine" {
		t.Errorf("review must be overwritten, got %q", ride.Review)
	}
	if got := f.drivers.RecomputeRatingCallCount; got != 2 {
		t.Errorf("expected 2 recomputes, got %d", got)
	}
}

func TestRateRide_ValidationAndState(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-live",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusInProgress,
	})
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-done",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusCompleted,
	})

	if err := f.svc.RateRide(context.Background(), domain.RiderActor("rider-1"), "ride-done", 0, ""); !errors.Is(err, service.ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 0, got %v", err)
	}
	if err := f.svc.RateRide(context.Background(), domain.RiderActor("rider-1"), "ride-done", 6, ""); !errors.Is(err, service.ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 6, got %v", err)
	}
	if err := f.svc.RateRide(context.Background(), domain.RiderActor("rider-1"), "ride-live", 5, ""); !errors.Is(err, service.ErrNotRatable) {
		t.Errorf("expected ErrNotRatable for a live ride, got %v", err)
	}
}

func TestGetStatus_CachesSnapshot(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addDriver("driver-1", domain.DriverStatusOnTrip)
	f.rides.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
		Status:   domain.RideStatusConfirmed,
		Fare:     90.00,
	})

	snap, err := f.svc.GetStatus(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Status != string(domain.RideStatusConfirmed) {
		t.Errorf("expected status %s, got %s", domain.RideStatusConfirmed, snap.Status)
	}
	if snap.DriverName != "Test Driver" {
		t.Errorf("expected assigned driver in snapshot, got %q", snap.DriverName)
	}
	if !f.cache.HasSnapshot("ride-1") {
		t.Error("expected snapshot cached after a poll")
	}
}
