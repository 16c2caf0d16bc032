package repository

import (
	"context"

	"trike/internal/domain"
)

// OutboxRepository defines the persistence operations for the notification
// outbox. Rows are appended inside the transaction that produced them and
// drained by the delivery relay.
type OutboxRepository interface {
	// Append enqueues an event.
	Append(ctx context.Context, event *domain.Event) error

	// ListPendingForUser returns undelivered events addressed to the user,
	// oldest first.
	ListPendingForUser(ctx context.Context, recipientID string) ([]*domain.Event, error)

	// ListPendingForRole returns undelivered events addressed to the role
	// group, oldest first.
	ListPendingForRole(ctx context.Context, role domain.Role) ([]*domain.Event, error)

	// MarkDelivered flags events as delivered.
	MarkDelivered(ctx context.Context, eventIDs []string) error
}
