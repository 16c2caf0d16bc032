package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending     RideStatus = "PENDING"
	RideStatusDriverFound RideStatus = "DRIVER_FOUND"
	RideStatusConfirmed   RideStatus = "CONFIRMED"
	RideStatusArrived     RideStatus = "ARRIVED"
	RideStatusInProgress  RideStatus = "IN_PROGRESS"
	RideStatusCompleted   RideStatus = "COMPLETED"
	RideStatusCancelled   RideStatus = "CANCELLED"
	RideStatusRejected    RideStatus = "REJECTED"
)

// liveStatuses are the statuses in which a ride still occupies its rider.
var liveStatuses = map[RideStatus]bool{
	RideStatusPending:     true,
	RideStatusDriverFound: true,
	RideStatusConfirmed:   true,
	RideStatusArrived:     true,
	RideStatusInProgress:  true,
}

// transitions is the closed set of valid status moves. Anything not listed
// here is rejected before any write.
var transitions = map[RideStatus][]RideStatus{
	RideStatusPending:     {RideStatusDriverFound, RideStatusRejected, RideStatusCancelled},
	RideStatusDriverFound: {RideStatusConfirmed, RideStatusPending, RideStatusCancelled},
	RideStatusConfirmed:   {RideStatusArrived, RideStatusInProgress, RideStatusCancelled},
	RideStatusArrived:     {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress:  {RideStatusCompleted, RideStatusCancelled},
}

// IsLive reports whether the status still counts against the rider's
// one-live-ride limit.
func (s RideStatus) IsLive() bool {
	return liveStatuses[s]
}

// IsTerminal reports whether the ride can never change status again.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled || s == RideStatusRejected
}

// CanBecome reports whether moving from s to next is a valid transition.
func (s RideStatus) CanBecome(next RideStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// RequiresDriver reports whether a ride in this status must carry a driver.
func (s RideStatus) RequiresDriver() bool {
	switch s {
	case RideStatusDriverFound, RideStatusConfirmed, RideStatusArrived,
		RideStatusInProgress, RideStatusCompleted:
		return true
	}
	return false
}

// PaymentMethod represents the payment method for a ride.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodGCash PaymentMethod = "GCASH"
	PaymentMethodCard  PaymentMethod = "CARD"
)

// Ride represents one rider request from creation to a terminal status.
type Ride struct {
	ID             string
	RiderID        string
	DriverID       string // empty until dispatch assigns one
	Status         RideStatus
	PickupAddress  string
	PickupLat      float64
	PickupLng      float64
	DropoffAddress string
	DropoffLat     float64
	DropoffLng     float64
	PaymentMethod  PaymentMethod
	Fare           float64 // estimate at creation, final value after completion
	DistanceKm     float64
	DurationMins   float64
	Rating         int // 1-5, rider to driver, zero until rated
	Review         string
	CancelledBy    string
	CancelReason   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ArrivedAt      time.Time
	StartedAt      time.Time
	EndedAt        time.Time
	CompletedAt    time.Time
}

// Rated reports whether the rider has submitted a rating for this ride.
func (r *Ride) Rated() bool {
	return r.Rating >= 1 && r.Rating <= 5
}
