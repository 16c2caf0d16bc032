package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// DriverHandler handles HTTP requests for drivers: registration, presence
// and the trip progress calls.
type DriverHandler struct {
	drivers  *service.DriverService
	bookings *service.BookingLifecycle
	ledger   *service.EarningsLedger
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(drivers *service.DriverService, bookings *service.BookingLifecycle, ledger *service.EarningsLedger) *DriverHandler {
	return &DriverHandler{
		drivers:  drivers,
		bookings: bookings,
		ledger:   ledger,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	PlateNo string `json:"plate_no"`
}

// UpdateLocationRequest is the HTTP request body for the location heartbeat.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RideActionRequest is the HTTP request body for driver actions on a ride.
type RideActionRequest struct {
	RideID string `json:"ride_id"`
	Reason string `json:"reason,omitempty"`
}

// CompleteTripRequest is the HTTP request body for completing a trip.
type CompleteTripRequest struct {
	RideID     string  `json:"ride_id"`
	ActualFare float64 `json:"actual_fare,omitempty"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	PlateNo       string  `json:"plate_no"`
	Status        string  `json:"status"`
	Verified      bool    `json:"verified"`
	Lat           float64 `json:"lat,omitempty"`
	Lng           float64 `json:"lng,omitempty"`
	Rating        float64 `json:"rating"`
	TotalRatings  int     `json:"total_ratings"`
	TotalTrips    int     `json:"total_trips"`
	TotalDeclines int     `json:"total_declines"`
	TotalEarnings float64 `json:"total_earnings"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		PlateNo:       d.PlateNo,
		Status:        string(d.Status),
		Verified:      d.Verified,
		Lat:           d.CurrentLat,
		Lng:           d.CurrentLng,
		Rating:        d.Rating,
		TotalRatings:  d.TotalRatings,
		TotalTrips:    d.TotalTrips,
		TotalDeclines: d.TotalDeclines,
		TotalEarnings: d.TotalEarnings,
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.drivers.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:    req.Name,
		Phone:   req.Phone,
		PlateNo: req.PlateNo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// List handles GET /v1/drivers
func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.drivers.List(c.Request.Context(), domain.AdminActor())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driverID := c.Param("id")

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.drivers.UpdateLocation(c.Request.Context(), domain.DriverActor(driverID), driverID, req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	driverID := c.Param("id")

	err := h.drivers.GoOffline(c.Request.Context(), domain.DriverActor(driverID), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "offline"})
}

// AcceptRide handles POST /v1/drivers/:id/accept
func (h *DriverHandler) AcceptRide(c *gin.Context) {
	driverID := c.Param("id")

	var req RideActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookings.AcceptRide(c.Request.Context(), domain.DriverActor(driverID), req.RideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// DeclineRide handles POST /v1/drivers/:id/decline
func (h *DriverHandler) DeclineRide(c *gin.Context) {
	driverID := c.Param("id")

	var req RideActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookings.DeclineRide(c.Request.Context(), domain.DriverActor(driverID), req.RideID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// MarkArrived handles POST /v1/drivers/:id/arrived
func (h *DriverHandler) MarkArrived(c *gin.Context) {
	driverID := c.Param("id")

	var req RideActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookings.MarkArrived(c.Request.Context(), domain.DriverActor(driverID), req.RideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// StartTrip handles POST /v1/drivers/:id/start
func (h *DriverHandler) StartTrip(c *gin.Context) {
	driverID := c.Param("id")

	var req RideActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookings.StartTrip(c.Request.Context(), domain.DriverActor(driverID), req.RideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteTripResponse is the HTTP response for completing a trip.
type CompleteTripResponse struct {
	Ride     RideResponse      `json:"ride"`
	Earnings *EarningsResponse `json:"earnings,omitempty"`
}

// EarningsResponse is the HTTP representation of a settlement record.
type EarningsResponse struct {
	ID                 string  `json:"id"`
	RideID             string  `json:"ride_id"`
	DriverID           string  `json:"driver_id"`
	GrossFare          float64 `json:"gross_fare"`
	PlatformCommission float64 `json:"platform_commission"`
	NetEarnings        float64 `json:"net_earnings"`
	CreatedAt          string  `json:"created_at"`
}

func toEarningsResponse(rec *domain.EarningsRecord) *EarningsResponse {
	if rec == nil {
		return nil
	}
	return &EarningsResponse{
		ID:                 rec.ID,
		RideID:             rec.RideID,
		DriverID:           rec.DriverID,
		GrossFare:          rec.GrossFare,
		PlatformCommission: rec.PlatformCommission,
		NetEarnings:        rec.NetEarnings,
		CreatedAt:          rec.CreatedAt.Format(time.RFC3339),
	}
}

// CompleteTrip handles POST /v1/drivers/:id/complete
func (h *DriverHandler) CompleteTrip(c *gin.Context) {
	driverID := c.Param("id")

	var req CompleteTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, record, err := h.bookings.CompleteTrip(c.Request.Context(), domain.DriverActor(driverID), req.RideID, req.ActualFare)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CompleteTripResponse{
		Ride:     toRideResponse(ride),
		Earnings: toEarningsResponse(record),
	})
}

// ListEarnings handles GET /v1/drivers/:id/earnings
func (h *DriverHandler) ListEarnings(c *gin.Context) {
	driverID := c.Param("id")

	driver, err := h.drivers.GetByID(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	records, err := h.ledger.ListDriverEarnings(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]*EarningsResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toEarningsResponse(rec))
	}

	respondJSON(c, http.StatusOK, gin.H{
		"driver_id":      driver.ID,
		"total_earnings": driver.TotalEarnings,
		"total_trips":    driver.TotalTrips,
		"rating":         driver.Rating,
		"records":        items,
	})
}
