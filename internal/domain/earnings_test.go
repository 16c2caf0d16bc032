package domain

import (
	"testing"
	"time"
)

func TestNewEarningsRecordSplitsFare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		gross      float64
		net        float64
		commission float64
	}{
		{"round fare", 200.00, 160.00, 40.00},
		{"minimum fare", 50.00, 40.00, 10.00},
		{"odd centavos", 99.99, 79.99, 20.00},
		{"single peso", 1.00, 0.80, 0.20},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := NewEarningsRecord("rec-1", "ride-1", "driver-1", tc.gross, time.Now())

			if rec.NetEarnings != tc.net {
				t.Errorf("expected net %.2f, got %.2f", tc.net, rec.NetEarnings)
			}
			if rec.PlatformCommission != tc.commission {
				t.Errorf("expected commission %.2f, got %.2f", tc.commission, rec.PlatformCommission)
			}
		})
	}
}
