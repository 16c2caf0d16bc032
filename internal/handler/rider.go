package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trike/internal/service"
)

// RiderHandler handles HTTP requests for riders.
type RiderHandler struct {
	riders *service.RiderService
}

// NewRiderHandler creates a new RiderHandler.
func NewRiderHandler(riders *service.RiderService) *RiderHandler {
	return &RiderHandler{riders: riders}
}

// RegisterRiderRequest is the HTTP request body for registering a rider.
type RegisterRiderRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RiderResponse is the HTTP representation of a rider.
type RiderResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

// Register handles POST /v1/riders/register
func (h *RiderHandler) Register(c *gin.Context) {
	var req RegisterRiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rider, err := h.riders.Register(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, RiderResponse{
		ID:        rider.ID,
		Name:      rider.Name,
		Phone:     rider.Phone,
		CreatedAt: rider.CreatedAt.Format(time.RFC3339),
	})
}
