package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// NotificationHandler serves the notification poll endpoint.
type NotificationHandler struct {
	feed *service.NotificationFeed
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(feed *service.NotificationFeed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// EventResponse is the HTTP representation of a notification event.
type EventResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	RideID    string         `json:"ride_id"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// Poll handles GET /v1/notifications?role=&actor_id=
// Fetching marks the returned events delivered.
func (h *NotificationHandler) Poll(c *gin.Context) {
	role := domain.Role(c.Query("role"))
	actorID := c.Query("actor_id")

	var actor domain.ActorContext
	switch role {
	case domain.RoleRider:
		actor = domain.RiderActor(actorID)
	case domain.RoleDriver:
		actor = domain.DriverActor(actorID)
	case domain.RoleAdmin:
		actor = domain.AdminActor()
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid role"})
		return
	}

	events, err := h.feed.Poll(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		response = append(response, EventResponse{
			ID:        ev.ID,
			Type:      string(ev.Type),
			RideID:    ev.RideID,
			Message:   ev.Message,
			Data:      ev.Data,
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, response)
}
