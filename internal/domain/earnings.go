package domain

import "time"

// Commission split applied to every completed ride. Policy values, not tunable
// per ride.
const (
	DriverShareRate        = 0.80
	PlatformCommissionRate = 0.20
)

// EarningsRecord is the immutable settlement row written once per completed
// ride.
type EarningsRecord struct {
	ID                 string
	RideID             string
	DriverID           string
	GrossFare          float64
	PlatformCommission float64
	NetEarnings        float64
	CreatedAt          time.Time
}

// NewEarningsRecord splits a gross fare according to the commission policy.
func NewEarningsRecord(id, rideID, driverID string, grossFare float64, at time.Time) *EarningsRecord {
	return &EarningsRecord{
		ID:                 id,
		RideID:             rideID,
		DriverID:           driverID,
		GrossFare:          grossFare,
		PlatformCommission: RoundCentavos(grossFare * PlatformCommissionRate),
		NetEarnings:        RoundCentavos(grossFare * DriverShareRate),
		CreatedAt:          at,
	}
}
