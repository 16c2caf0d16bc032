package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"trike/internal/domain"
)

// OutboxRepository is a PostgreSQL implementation of
// repository.OutboxRepository over the notification_outbox table.
type OutboxRepository struct {
	q Querier
}

// NewOutboxRepository creates a new PostgreSQL outbox repository.
func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{q: db}
}

// NewOutboxRepositoryWithTx creates an outbox repository using a transaction.
func NewOutboxRepositoryWithTx(tx *sql.Tx) *OutboxRepository {
	return &OutboxRepository{q: tx}
}

// Append enqueues an event. Called inside the transaction that produced the
// event so the row commits with the state change.
func (r *OutboxRepository) Append(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notification_outbox (id, event_type, ride_id, recipient_id, recipient_role, message, payload, created_at, delivered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
	`
	_, err = r.q.ExecContext(ctx, query,
		event.ID,
		event.Type,
		nullString(event.RideID),
		nullString(event.RecipientID),
		nullString(string(event.Role)),
		event.Message,
		payload,
		event.CreatedAt,
	)
	return err
}

// ListPendingForUser returns undelivered events addressed to the user, oldest
// first.
func (r *OutboxRepository) ListPendingForUser(ctx context.Context, recipientID string) ([]*domain.Event, error) {
	query := `
		SELECT id, event_type, COALESCE(ride_id, ''), COALESCE(recipient_id, ''), COALESCE(recipient_role, ''), message, payload, created_at, delivered
		FROM notification_outbox
		WHERE recipient_id = $1 AND delivered = FALSE
		ORDER BY created_at ASC LIMIT 100
	`
	return r.list(ctx, query, recipientID)
}

// ListPendingForRole returns undelivered events addressed to the role group,
// oldest first.
func (r *OutboxRepository) ListPendingForRole(ctx context.Context, role domain.Role) ([]*domain.Event, error) {
	query := `
		SELECT id, event_type, COALESCE(ride_id, ''), COALESCE(recipient_id, ''), COALESCE(recipient_role, ''), message, payload, created_at, delivered
		FROM notification_outbox
		WHERE recipient_role = $1 AND delivered = FALSE
		ORDER BY created_at ASC LIMIT 100
	`
	return r.list(ctx, query, string(role))
}

func (r *OutboxRepository) list(ctx context.Context, query string, arg any) ([]*domain.Event, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var event domain.Event
		var role string
		var payload []byte
		if err := rows.Scan(&event.ID, &event.Type, &event.RideID, &event.RecipientID, &role, &event.Message, &payload, &event.CreatedAt, &event.Delivered); err != nil {
			return nil, err
		}
		event.Role = domain.Role(role)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Data); err != nil {
				return nil, err
			}
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

// MarkDelivered flags events as delivered.
func (r *OutboxRepository) MarkDelivered(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}

	query := `UPDATE notification_outbox SET delivered = TRUE WHERE id = ANY($1)`
	_, err := r.q.ExecContext(ctx, query, pq.Array(eventIDs))
	return err
}
