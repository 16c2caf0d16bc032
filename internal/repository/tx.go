package repository

import "context"

// Repos bundles the repositories scoped to one transaction. Every lifecycle
// transition runs its ride update, driver side effects, settlement writes and
// outbox rows against the same Repos so they commit or roll back together.
type Repos struct {
	Rides    RideRepository
	Drivers  DriverRepository
	Earnings EarningsRepository
	Outbox   OutboxRepository
}

// Store opens atomic units of work.
type Store interface {
	// RunInTx runs fn inside a single transaction. Any error from fn rolls
	// the whole unit back.
	RunInTx(ctx context.Context, fn func(r Repos) error) error
}
