package service

import (
	"context"

	"trike/internal/domain"
	"trike/internal/repository"
)

// NotificationFeed serves the polling side of the outbox: clients fetch their
// pending events and the fetch marks them delivered. Events addressed to a
// role group (dispatch) are merged with the actor's personal events.
type NotificationFeed struct {
	outboxRepo repository.OutboxRepository
}

// NewNotificationFeed creates a new NotificationFeed.
func NewNotificationFeed(outboxRepo repository.OutboxRepository) *NotificationFeed {
	return &NotificationFeed{outboxRepo: outboxRepo}
}

// Poll returns the actor's undelivered events, oldest first, and marks them
// delivered. Events survive until fetched exactly once; a client crash before
// reading the response loses at most one batch.
func (s *NotificationFeed) Poll(ctx context.Context, actor domain.ActorContext) ([]*domain.Event, error) {
	if actor.ID == "" && actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	var events []*domain.Event

	if actor.ID != "" {
		personal, err := s.outboxRepo.ListPendingForUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		events = append(events, personal...)
	}

	if actor.Role == domain.RoleAdmin {
		group, err := s.outboxRepo.ListPendingForRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		events = append(events, group...)
	}

	if len(events) == 0 {
		return []*domain.Event{}, nil
	}

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
		ev.Delivered = true
	}

	if err := s.outboxRepo.MarkDelivered(ctx, ids); err != nil {
		return nil, err
	}

	return events, nil
}
