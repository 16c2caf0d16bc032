package domain

import "math"

// FareTariff is the active fare-formula configuration. At most one tariff is
// active at a time; the calculator falls back to DefaultTariff when none is
// configured.
type FareTariff struct {
	ID              string
	BaseFare        float64
	PerKmRate       float64
	PerMinuteRate   float64
	MinimumFare     float64
	SurgeMultiplier float64
	Active          bool
}

// DefaultTariff returns the hardcoded fallback tariff.
func DefaultTariff() FareTariff {
	return FareTariff{
		BaseFare:        50.00,
		PerKmRate:       15.00,
		PerMinuteRate:   2.00,
		MinimumFare:     50.00,
		SurgeMultiplier: 1.00,
	}
}

// RoundCentavos rounds a monetary amount to 2 decimal places.
func RoundCentavos(amount float64) float64 {
	return math.Round(amount*100) / 100
}
