package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// BookingHandler handles HTTP requests for ride bookings.
type BookingHandler struct {
	bookings *service.BookingLifecycle
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *service.BookingLifecycle) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	RiderID        string  `json:"rider_id"`
	PickupAddress  string  `json:"pickup_address"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DropoffAddress string  `json:"dropoff_address"`
	DropoffLat     float64 `json:"dropoff_lat"`
	DropoffLng     float64 `json:"dropoff_lng"`
	PaymentMethod  string  `json:"payment_method,omitempty"` // CASH, GCASH, CARD
	Distance       string  `json:"distance,omitempty"`       // e.g. "5.2 km"
	Duration       string  `json:"duration,omitempty"`       // e.g. "15 mins"
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	RiderID string `json:"rider_id"`
	Reason  string `json:"reason,omitempty"`
}

// RateRideRequest is the HTTP request body for rating a completed ride.
type RateRideRequest struct {
	RiderID string `json:"rider_id"`
	Rating  int    `json:"rating"`
	Review  string `json:"review,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID             string  `json:"id"`
	RiderID        string  `json:"rider_id"`
	DriverID       string  `json:"driver_id,omitempty"`
	Status         string  `json:"status"`
	PickupAddress  string  `json:"pickup_address"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DropoffAddress string  `json:"dropoff_address"`
	DropoffLat     float64 `json:"dropoff_lat"`
	DropoffLng     float64 `json:"dropoff_lng"`
	PaymentMethod  string  `json:"payment_method"`
	Fare           float64 `json:"fare"`
	DistanceKm     float64 `json:"distance_km"`
	DurationMins   float64 `json:"duration_mins"`
	Rating         int     `json:"rating,omitempty"`
	Review         string  `json:"review,omitempty"`
	CancelReason   string  `json:"cancel_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
	StartedAt      string  `json:"started_at,omitempty"`
	CompletedAt    string  `json:"completed_at,omitempty"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:             r.ID,
		RiderID:        r.RiderID,
		DriverID:       r.DriverID,
		Status:         string(r.Status),
		PickupAddress:  r.PickupAddress,
		PickupLat:      r.PickupLat,
		PickupLng:      r.PickupLng,
		DropoffAddress: r.DropoffAddress,
		DropoffLat:     r.DropoffLat,
		DropoffLng:     r.DropoffLng,
		PaymentMethod:  string(r.PaymentMethod),
		Fare:           r.Fare,
		DistanceKm:     r.DistanceKm,
		DurationMins:   r.DurationMins,
		Rating:         r.Rating,
		Review:         r.Review,
		CancelReason:   r.CancelReason,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}

	if !r.StartedAt.IsZero() {
		resp.StartedAt = r.StartedAt.Format(time.RFC3339)
	}
	if !r.CompletedAt.IsZero() {
		resp.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}

	return resp
}

// CreateRide handles POST /v1/rides
func (h *BookingHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	paymentMethod, err := service.ValidatePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	ride, err := h.bookings.CreateRide(c.Request.Context(), domain.RiderActor(req.RiderID), service.CreateRideRequest{
		RiderID:        req.RiderID,
		PickupAddress:  req.PickupAddress,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DropoffAddress: req.DropoffAddress,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		PaymentMethod:  paymentMethod,
		DistanceText:   req.Distance,
		DurationText:   req.Duration,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *BookingHandler) GetRide(c *gin.Context) {
	snap, err := h.bookings.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, snap)
}

// ListRides handles GET /v1/rides
func (h *BookingHandler) ListRides(c *gin.Context) {
	rides, err := h.bookings.ListRides(c.Request.Context(), domain.AdminActor())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *BookingHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookings.CancelRide(c.Request.Context(), domain.RiderActor(req.RiderID), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RateRide handles POST /v1/rides/:id/rate
func (h *BookingHandler) RateRide(c *gin.Context) {
	var req RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.bookings.RateRide(c.Request.Context(), domain.RiderActor(req.RiderID), c.Param("id"), req.Rating, req.Review)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "rated"})
}

// AssignDriverRequest is the HTTP request body for assigning a driver.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// RejectRideRequest is the HTTP request body for rejecting a ride.
type RejectRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// AssignDriver handles POST /v1/rides/:id/assign
func (h *BookingHandler) AssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookings.AssignDriver(c.Request.Context(), domain.AdminActor(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RejectRide handles POST /v1/rides/:id/reject
func (h *BookingHandler) RejectRide(c *gin.Context) {
	var req RejectRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookings.RejectRide(c.Request.Context(), domain.AdminActor(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
