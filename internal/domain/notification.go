package domain

import "time"

// EventType discriminates notification events pushed to riders, drivers and
// the admin group.
type EventType string

const (
	EventRideRequested  EventType = "RIDE_REQUESTED"
	EventDriverAssigned EventType = "DRIVER_ASSIGNED"
	EventRideConfirmed  EventType = "RIDE_CONFIRMED"
	EventDriverDeclined EventType = "DRIVER_DECLINED"
	EventRideRejected   EventType = "RIDE_REJECTED"
	EventDriverArrived  EventType = "DRIVER_ARRIVED"
	EventTripStarted    EventType = "TRIP_STARTED"
	EventTripCompleted  EventType = "TRIP_COMPLETED"
	EventRideCancelled  EventType = "RIDE_CANCELLED"
	EventRateReminder   EventType = "RATE_REMINDER"
)

// Event is one notification payload. Events are written to the outbox in the
// same transaction as the state change that produced them and drained by the
// delivery relay.
type Event struct {
	ID          string
	Type        EventType
	RideID      string
	RecipientID string // empty for role-addressed events
	Role        Role   // empty for user-addressed events
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
	Delivered   bool
}
