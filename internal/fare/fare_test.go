package fare

import (
	"testing"

	"trike/internal/domain"
)

func TestEstimate_DefaultTariff(t *testing.T) {
	t.Parallel()

	// 50 base + 5*15 distance + 15*2 duration = 155.00
	got := Estimate(5.0, 15, domain.DefaultTariff())
	if got != 155.00 {
		t.Errorf("expected fare 155.00, got %.2f", got)
	}
}

func TestEstimate_MinimumFareFloor(t *testing.T) {
	t.Parallel()

	got := Estimate(0, 0, domain.DefaultTariff())
	if got != 50.00 {
		t.Errorf("expected minimum fare 50.00, got %.2f", got)
	}
}

func TestEstimate_SurgeApplied(t *testing.T) {
	t.Parallel()

	tariff := domain.DefaultTariff()
	tariff.SurgeMultiplier = 1.5

	// (50 + 2*15 + 10*2) * 1.5 = 150.00
	got := Estimate(2.0, 10, tariff)
	if got != 150.00 {
		t.Errorf("expected fare 150.00, got %.2f", got)
	}
}

func TestEstimate_StoredMultiplierAppliedAsIs(t *testing.T) {
	t.Parallel()

	tariff := domain.DefaultTariff()
	tariff.SurgeMultiplier = 0.8

	// (50 + 2*15 + 10*2) * 0.8 = 80.00
	got := Estimate(2.0, 10, tariff)
	if got != 80.00 {
		t.Errorf("expected fare 80.00, got %.2f", got)
	}
}

func TestEstimate_RoundsToTwoDecimals(t *testing.T) {
	t.Parallel()

	tariff := domain.FareTariff{
		BaseFare:        10,
		PerKmRate:       3.333,
		PerMinuteRate:   0,
		MinimumFare:     0,
		SurgeMultiplier: 1.0,
	}

	got := Estimate(1.0, 0, tariff)
	if got != 13.33 {
		t.Errorf("expected fare 13.33, got %.4f", got)
	}
}

func TestEstimate_NegativeInputsTreatedAsZero(t *testing.T) {
	t.Parallel()

	got := Estimate(-3, -10, domain.DefaultTariff())
	if got != 50.00 {
		t.Errorf("expected minimum fare 50.00, got %.2f", got)
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		text string
		want float64
	}{
		{name: "plain km", text: "5 km", want: 5},
		{name: "decimal km", text: "5.2 km", want: 5.2},
		{name: "minutes with prefix", text: "approx. 15 mins", want: 15},
		{name: "bare number", text: "12", want: 12},
		{name: "empty", text: "", want: 0},
		{name: "no numeric token", text: "unknown distance", want: 0},
		{name: "negative treated as zero", text: "-4 km", want: 0},
		{name: "trailing punctuation", text: "8km,", want: 8},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ParseQuantity(tc.text)
			if got != tc.want {
				t.Errorf("ParseQuantity(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestEstimateFromText_MalformedInputsHitMinimum(t *testing.T) {
	t.Parallel()

	got := EstimateFromText("n/a", "", domain.DefaultTariff())
	if got != 50.00 {
		t.Errorf("expected minimum fare 50.00, got %.2f", got)
	}
}
