package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

// Notifier builds notification events and appends them to the outbox. Every
// method takes the outbox repository scoped to the caller's transaction, so an
// event is durably enqueued iff the transition that produced it commits.
type Notifier struct{}

// NewNotifier creates a new Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// NotifyUser enqueues an event addressed to one user.
func (n *Notifier) NotifyUser(ctx context.Context, outbox repository.OutboxRepository, recipientID string, event domain.Event) error {
	event.ID = uuid.New().String()
	event.RecipientID = recipientID
	event.CreatedAt = time.Now()
	return outbox.Append(ctx, &event)
}

// NotifyRole enqueues an event addressed to every member of a role group.
func (n *Notifier) NotifyRole(ctx context.Context, outbox repository.OutboxRepository, role domain.Role, event domain.Event) error {
	event.ID = uuid.New().String()
	event.Role = role
	event.CreatedAt = time.Now()
	return outbox.Append(ctx, &event)
}

// RideRequested tells the admin group a new booking needs dispatch.
func (n *Notifier) RideRequested(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride) error {
	return n.NotifyRole(ctx, outbox, domain.RoleAdmin, domain.Event{
		Type:    domain.EventRideRequested,
		RideID:  ride.ID,
		Message: fmt.Sprintf("New booking from %s to %s", ride.PickupAddress, ride.DropoffAddress),
		Data: map[string]any{
			"ride_id":    ride.ID,
			"rider_id":   ride.RiderID,
			"pickup_lat": ride.PickupLat,
			"pickup_lng": ride.PickupLng,
			"fare":       ride.Fare,
		},
	})
}

// DriverAssigned tells the driver about the offer and the rider that a driver
// was found.
func (n *Notifier) DriverAssigned(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride, driver *domain.Driver) error {
	err := n.NotifyUser(ctx, outbox, driver.ID, domain.Event{
		Type:    domain.EventDriverAssigned,
		RideID:  ride.ID,
		Message: fmt.Sprintf("New trip offer: pickup at %s", ride.PickupAddress),
		Data: map[string]any{
			"ride_id":    ride.ID,
			"pickup_lat": ride.PickupLat,
			"pickup_lng": ride.PickupLng,
			"fare":       ride.Fare,
		},
	})
	if err != nil {
		return err
	}

	return n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventDriverAssigned,
		RideID:  ride.ID,
		Message: fmt.Sprintf("Driver %s has been assigned to your booking", driver.Name),
		Data: map[string]any{
			"ride_id":     ride.ID,
			"driver_id":   driver.ID,
			"driver_name": driver.Name,
			"plate_no":    driver.PlateNo,
		},
	})
}

// RideConfirmed tells the rider the driver accepted.
func (n *Notifier) RideConfirmed(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride) error {
	return n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventRideConfirmed,
		RideID:  ride.ID,
		Message: "Your driver accepted and is on the way",
		Data:    map[string]any{"ride_id": ride.ID, "driver_id": ride.DriverID},
	})
}

// DriverDeclined tells the rider and the admin group the offer was declined
// and the booking is back in the dispatch pool.
func (n *Notifier) DriverDeclined(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride, driverID, reason string) error {
	err := n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventDriverDeclined,
		RideID:  ride.ID,
		Message: "The driver declined; we are finding you another one",
		Data:    map[string]any{"ride_id": ride.ID},
	})
	if err != nil {
		return err
	}

	return n.NotifyRole(ctx, outbox, domain.RoleAdmin, domain.Event{
		Type:    domain.EventDriverDeclined,
		RideID:  ride.ID,
		Message: fmt.Sprintf("Driver declined booking %s, reassignment needed", ride.ID),
		Data:    map[string]any{"ride_id": ride.ID, "driver_id": driverID, "reason": reason},
	})
}

// RideRejected tells the rider dispatch turned the booking down.
func (n *Notifier) RideRejected(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride) error {
	return n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventRideRejected,
		RideID:  ride.ID,
		Message: "Your booking could not be served",
		Data:    map[string]any{"ride_id": ride.ID},
	})
}

// DriverArrived tells the rider the tricycle is at the pickup point.
func (n *Notifier) DriverArrived(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride) error {
	return n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventDriverArrived,
		RideID:  ride.ID,
		Message: "Your driver has arrived at the pickup point",
		Data:    map[string]any{"ride_id": ride.ID},
	})
}

// TripStarted tells the rider the trip is underway.
func (n *Notifier) TripStarted(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride) error {
	return n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventTripStarted,
		RideID:  ride.ID,
		Message: "Your trip has started",
		Data:    map[string]any{"ride_id": ride.ID},
	})
}

// TripCompleted tells the rider the trip ended and asks for a rating.
func (n *Notifier) TripCompleted(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride) error {
	err := n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventTripCompleted,
		RideID:  ride.ID,
		Message: fmt.Sprintf("Trip completed. Total fare: %.2f", ride.Fare),
		Data:    map[string]any{"ride_id": ride.ID, "fare": ride.Fare},
	})
	if err != nil {
		return err
	}

	return n.NotifyUser(ctx, outbox, ride.RiderID, domain.Event{
		Type:    domain.EventRateReminder,
		RideID:  ride.ID,
		Message: "How was your trip? Rate your driver",
		Data:    map[string]any{"ride_id": ride.ID, "driver_id": ride.DriverID},
	})
}

// RideCancelled tells the assigned driver, if any, and the admin group.
func (n *Notifier) RideCancelled(ctx context.Context, outbox repository.OutboxRepository, ride *domain.Ride) error {
	if ride.DriverID != "" {
		err := n.NotifyUser(ctx, outbox, ride.DriverID, domain.Event{
			Type:    domain.EventRideCancelled,
			RideID:  ride.ID,
			Message: "The rider cancelled the booking",
			Data:    map[string]any{"ride_id": ride.ID, "reason": ride.CancelReason},
		})
		if err != nil {
			return err
		}
	}

	return n.NotifyRole(ctx, outbox, domain.RoleAdmin, domain.Event{
		Type:    domain.EventRideCancelled,
		RideID:  ride.ID,
		Message: fmt.Sprintf("Booking %s cancelled by rider", ride.ID),
		Data:    map[string]any{"ride_id": ride.ID, "cancelled_by": ride.CancelledBy, "reason": ride.CancelReason},
	})
}
