package postgres

import (
	"context"
	"database/sql"

	"trike/internal/repository"
)

// Store opens transactions and hands out transaction-scoped repositories so a
// status transition and all of its side-effect writes commit atomically.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ repository.Store = (*Store)(nil)

// RunInTx runs fn inside a single transaction. Any error from fn rolls the
// whole unit back.
func (s *Store) RunInTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.Repos{
		Rides:    NewRideRepositoryWithTx(tx),
		Drivers:  NewDriverRepositoryWithTx(tx),
		Earnings: NewEarningsRepositoryWithTx(tx),
		Outbox:   NewOutboxRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
