package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "AVAILABLE"
	DriverStatusOnTrip    DriverStatus = "ON_TRIP"
	DriverStatusOffline   DriverStatus = "OFFLINE"
)

// Driver represents a tricycle driver in the system.
type Driver struct {
	ID          string
	Name        string
	Phone       string
	PlateNo     string
	Status      DriverStatus
	Verified    bool
	CurrentLat  float64
	CurrentLng  float64
	HasPosition bool // false until the first location heartbeat

	// Aggregates maintained by the earnings ledger and rating flow.
	Rating        float64
	TotalRatings  int
	TotalTrips    int
	TotalDeclines int
	TotalEarnings float64
	LastSeenAt    time.Time
}

// Dispatchable reports whether the driver can be offered a new ride.
func (d *Driver) Dispatchable() bool {
	return d.Status == DriverStatusAvailable && d.Verified && d.HasPosition
}
