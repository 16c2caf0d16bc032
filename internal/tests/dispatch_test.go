package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"trike/internal/domain"
	"trike/internal/redis"
	"trike/internal/service"
)

// ──────────────────────────────────────────────
// NEARBY DRIVER LOOKUP
// ──────────────────────────────────────────────

func TestFindNearby_ReVerifiesAgainstDatabase(t *testing.T) {
	t.Parallel()

	drivers := NewMockDriverRepository()
	locations := NewMockLocationStore()
	directory := service.NewDriverDirectory(locations, drivers)

	// Four geo index entries, only one of which should survive: an
	// unverified driver, an on-trip driver, a stale entry with no database
	// row, and a dispatchable one.
	drivers.AddDriver(&domain.Driver{
		ID: "unverified", Status: domain.DriverStatusAvailable,
		CurrentLat: 14.5995, CurrentLng: 120.9842, HasPosition: true,
	})
	drivers.AddDriver(&domain.Driver{
		ID: "busy", Status: domain.DriverStatusOnTrip, Verified: true,
		CurrentLat: 14.5995, CurrentLng: 120.9842, HasPosition: true,
	})
	drivers.AddDriver(&domain.Driver{
		ID: "good", Status: domain.DriverStatusAvailable, Verified: true,
		CurrentLat: 14.5995, CurrentLng: 120.9842, HasPosition: true,
	})
	for _, id := range []string{"unverified", "busy", "ghost", "good"} {
		locations.AddDriverLocation(redis.DriverLocation{DriverID: id, Lat: 14.5995, Lng: 120.9842})
	}

	candidates, err := directory.FindNearby(context.Background(), 14.5995, 120.9842, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Driver.ID != "good" {
		t.Errorf("expected candidate %q, got %q", "good", candidates[0].Driver.ID)
	}
}

func TestFindNearby_StaleIndexPositionFilteredByRadius(t *testing.T) {
	t.Parallel()

	drivers := NewMockDriverRepository()
	locations := NewMockLocationStore()
	directory := service.NewDriverDirectory(locations, drivers)

	// Index says the driver is at the pickup, but the database position has
	// moved roughly 50km north. The database wins.
	drivers.AddDriver(&domain.Driver{
		ID: "moved", Status: domain.DriverStatusAvailable, Verified: true,
		CurrentLat: 15.05, CurrentLng: 120.9842, HasPosition: true,
	})
	locations.AddDriverLocation(redis.DriverLocation{DriverID: "moved", Lat: 14.5995, Lng: 120.9842})

	candidates, err := directory.FindNearby(context.Background(), 14.5995, 120.9842, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestFindNearby_SortsAndCapsAtTen(t *testing.T) {
	t.Parallel()

	drivers := NewMockDriverRepository()
	locations := NewMockLocationStore()
	directory := service.NewDriverDirectory(locations, drivers)

	// Twelve dispatchable drivers at increasing distance north of the
	// pickup; 0.01 degrees latitude is roughly 1.1km.
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("driver-%02d", i)
		lat := 14.5995 + float64(i)*0.01
		drivers.AddDriver(&domain.Driver{
			ID: id, Status: domain.DriverStatusAvailable, Verified: true,
			CurrentLat: lat, CurrentLng: 120.9842, HasPosition: true,
			Rating: 4.0,
		})
		locations.AddDriverLocation(redis.DriverLocation{DriverID: id, Lat: lat, Lng: 120.9842})
	}

	candidates, err := directory.FindNearby(context.Background(), 14.5995, 120.9842, 20.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(candidates))
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].DistanceKm < candidates[i-1].DistanceKm {
			t.Errorf("candidates out of order at %d: %.3f < %.3f", i, candidates[i].DistanceKm, candidates[i-1].DistanceKm)
		}
	}
	if candidates[0].Driver.ID != "driver-00" {
		t.Errorf("expected nearest driver first, got %q", candidates[0].Driver.ID)
	}
}

func TestFindNearby_RatingBreaksDistanceTies(t *testing.T) {
	t.Parallel()

	drivers := NewMockDriverRepository()
	locations := NewMockLocationStore()
	directory := service.NewDriverDirectory(locations, drivers)

	for id, rating := range map[string]float64{"mid": 3.5, "best": 4.9, "low": 2.0} {
		drivers.AddDriver(&domain.Driver{
			ID: id, Status: domain.DriverStatusAvailable, Verified: true,
			CurrentLat: 14.5995, CurrentLng: 120.9842, HasPosition: true,
			Rating: rating,
		})
		locations.AddDriverLocation(redis.DriverLocation{DriverID: id, Lat: 14.5995, Lng: 120.9842})
	}

	candidates, err := directory.FindNearby(context.Background(), 14.5995, 120.9842, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].Driver.ID != "best" {
		t.Errorf("expected highest rated first at equal distance, got %q", candidates[0].Driver.ID)
	}
}

func TestFindNearby_InvalidPoint(t *testing.T) {
	t.Parallel()

	directory := service.NewDriverDirectory(NewMockLocationStore(), NewMockDriverRepository())

	_, err := directory.FindNearby(context.Background(), -95.0, 120.9842, 5.0)
	if !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

// ──────────────────────────────────────────────
// NOTIFICATION FEED
// ──────────────────────────────────────────────

func TestNotificationFeed_PollMarksDelivered(t *testing.T) {
	t.Parallel()

	outbox := NewMockOutboxRepository()
	feed := service.NewNotificationFeed(outbox)
	notifier := service.NewNotifier()
	ctx := context.Background()

	ride := &domain.Ride{ID: "ride-1", RiderID: "rider-1", PickupAddress: "Market", DropoffAddress: "Plaza"}
	if err := notifier.RideRequested(ctx, outbox, ride); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := notifier.TripStarted(ctx, outbox, ride); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := feed.Poll(ctx, domain.RiderActor("rider-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 rider event, got %d", len(events))
	}
	if events[0].Type != domain.EventTripStarted {
		t.Errorf("expected %s, got %s", domain.EventTripStarted, events[0].Type)
	}

	// Second poll comes back empty; delivery is once.
	events, err = feed.Poll(ctx, domain.RiderActor("rider-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events on second poll, got %d", len(events))
	}
}

func TestNotificationFeed_AdminSeesRoleEvents(t *testing.T) {
	t.Parallel()

	outbox := NewMockOutboxRepository()
	feed := service.NewNotificationFeed(outbox)
	notifier := service.NewNotifier()
	ctx := context.Background()

	ride := &domain.Ride{ID: "ride-1", RiderID: "rider-1", PickupAddress: "Market", DropoffAddress: "Plaza"}
	if err := notifier.RideRequested(ctx, outbox, ride); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := feed.Poll(ctx, domain.AdminActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 dispatch event, got %d", len(events))
	}
	if events[0].Type != domain.EventRideRequested {
		t.Errorf("expected %s, got %s", domain.EventRideRequested, events[0].Type)
	}
}

func TestNotificationFeed_AnonymousNonAdminForbidden(t *testing.T) {
	t.Parallel()

	feed := service.NewNotificationFeed(NewMockOutboxRepository())

	_, err := feed.Poll(context.Background(), domain.RiderActor(""))
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
