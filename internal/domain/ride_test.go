package domain

import "testing"

func TestRideStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from, to RideStatus
	}{
		{RideStatusPending, RideStatusDriverFound},
		{RideStatusPending, RideStatusRejected},
		{RideStatusPending, RideStatusCancelled},
		{RideStatusDriverFound, RideStatusConfirmed},
		{RideStatusDriverFound, RideStatusPending}, // decline returns to pool
		{RideStatusDriverFound, RideStatusCancelled},
		{RideStatusConfirmed, RideStatusArrived},
		{RideStatusConfirmed, RideStatusInProgress}, // arrival call skipped
		{RideStatusConfirmed, RideStatusCancelled},
		{RideStatusArrived, RideStatusInProgress},
		{RideStatusArrived, RideStatusCancelled},
		{RideStatusInProgress, RideStatusCompleted},
		{RideStatusInProgress, RideStatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanBecome(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to RideStatus
	}{
		{RideStatusPending, RideStatusConfirmed},
		{RideStatusPending, RideStatusCompleted},
		{RideStatusDriverFound, RideStatusInProgress},
		{RideStatusConfirmed, RideStatusPending},
		{RideStatusArrived, RideStatusCompleted},
		{RideStatusCompleted, RideStatusCancelled},
		{RideStatusCancelled, RideStatusPending},
		{RideStatusRejected, RideStatusPending},
	}
	for _, tc := range denied {
		if tc.from.CanBecome(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	t.Parallel()

	every := []RideStatus{
		RideStatusPending, RideStatusDriverFound, RideStatusConfirmed,
		RideStatusArrived, RideStatusInProgress, RideStatusCompleted,
		RideStatusCancelled, RideStatusRejected,
	}

	for _, terminal := range []RideStatus{RideStatusCompleted, RideStatusCancelled, RideStatusRejected} {
		if !terminal.IsTerminal() {
			t.Errorf("%s should be terminal", terminal)
		}
		if terminal.IsLive() {
			t.Errorf("%s should not be live", terminal)
		}
		for _, next := range every {
			if terminal.CanBecome(next) {
				t.Errorf("terminal %s must not move to %s", terminal, next)
			}
		}
	}
}

func TestRequiresDriverMatchesLifecycle(t *testing.T) {
	t.Parallel()

	withDriver := []RideStatus{
		RideStatusDriverFound, RideStatusConfirmed, RideStatusArrived,
		RideStatusInProgress, RideStatusCompleted,
	}
	for _, s := range withDriver {
		if !s.RequiresDriver() {
			t.Errorf("%s must carry a driver", s)
		}
	}

	// A booking rejected from dispatch or never assigned has no driver. A
	// cancelled ride may or may not, so it is not constrained either way.
	for _, s := range []RideStatus{RideStatusPending, RideStatusRejected, RideStatusCancelled} {
		if s.RequiresDriver() {
			t.Errorf("%s must not require a driver", s)
		}
	}
}
