// Package fare computes ride fares from the active tariff. Distance and
// duration arrive as free-text values ("5.2 km", "15 mins"); the first numeric
// token is used and anything unparseable counts as zero.
package fare

import (
	"strconv"
	"strings"

	"trike/internal/domain"
)

// Estimate computes the fare for the given distance and duration under the
// tariff. It never fails: the result is always at least the minimum fare.
func Estimate(distanceKm, durationMins float64, tariff domain.FareTariff) float64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	if durationMins < 0 {
		durationMins = 0
	}

	// The multiplier applies as stored; the tariff update path keeps it at
	// 1.0 or above, and the minimum fare floors whatever comes out.
	amount := (tariff.BaseFare + distanceKm*tariff.PerKmRate + durationMins*tariff.PerMinuteRate) * tariff.SurgeMultiplier
	if amount < tariff.MinimumFare {
		amount = tariff.MinimumFare
	}

	return domain.RoundCentavos(amount)
}

// EstimateFromText computes the fare from client-supplied "X km" / "Y mins"
// strings.
func EstimateFromText(distanceText, durationText string, tariff domain.FareTariff) float64 {
	return Estimate(ParseQuantity(distanceText), ParseQuantity(durationText), tariff)
}

// ParseQuantity extracts the first numeric token from a free-text quantity
// such as "5.2 km" or "approx. 15 mins". Malformed input yields 0.
func ParseQuantity(text string) float64 {
	for _, field := range strings.Fields(text) {
		field = strings.TrimFunc(field, func(r rune) bool {
			return (r < '0' || r > '9') && r != '.' && r != '-'
		})
		if field == "" {
			continue
		}
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			if v < 0 {
				return 0
			}
			return v
		}
	}
	return 0
}
