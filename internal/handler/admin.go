package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// AdminHandler handles the dispatch console endpoints: nearby driver lookup
// and tariff management.
type AdminHandler struct {
	directory *service.DriverDirectory
	tariffs   *service.TariffService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(directory *service.DriverDirectory, tariffs *service.TariffService) *AdminHandler {
	return &AdminHandler{
		directory: directory,
		tariffs:   tariffs,
	}
}

// NearbyDriverResponse is one candidate in the nearby drivers listing.
type NearbyDriverResponse struct {
	DriverResponse
	DistanceKm float64 `json:"distance_km"`
}

// NearbyDrivers handles GET /v1/admin/drivers/nearby?lat=&lng=&radius=
func (h *AdminHandler) NearbyDrivers(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lat"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lng"})
		return
	}

	radiusKm := 0.0
	if raw := c.Query("radius"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius"})
			return
		}
	}

	candidates, err := h.directory.FindNearby(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyDriverResponse, 0, len(candidates))
	for _, cand := range candidates {
		response = append(response, NearbyDriverResponse{
			DriverResponse: toDriverResponse(cand.Driver),
			DistanceKm:     cand.DistanceKm,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// TariffResponse is the HTTP representation of the fare tariff.
type TariffResponse struct {
	BaseFare        float64 `json:"base_fare"`
	PerKmRate       float64 `json:"per_km_rate"`
	PerMinuteRate   float64 `json:"per_minute_rate"`
	MinimumFare     float64 `json:"minimum_fare"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
}

// UpdateTariffRequest is the HTTP request body for replacing the tariff.
type UpdateTariffRequest struct {
	BaseFare        float64 `json:"base_fare"`
	PerKmRate       float64 `json:"per_km_rate"`
	PerMinuteRate   float64 `json:"per_minute_rate"`
	MinimumFare     float64 `json:"minimum_fare"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
}

// GetTariff handles GET /v1/admin/tariff
func (h *AdminHandler) GetTariff(c *gin.Context) {
	tariff := h.tariffs.Active(c.Request.Context())

	respondJSON(c, http.StatusOK, TariffResponse{
		BaseFare:        tariff.BaseFare,
		PerKmRate:       tariff.PerKmRate,
		PerMinuteRate:   tariff.PerMinuteRate,
		MinimumFare:     tariff.MinimumFare,
		SurgeMultiplier: tariff.SurgeMultiplier,
	})
}

// UpdateTariff handles PUT /v1/admin/tariff
func (h *AdminHandler) UpdateTariff(c *gin.Context) {
	var req UpdateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tariff, err := h.tariffs.Update(c.Request.Context(), domain.AdminActor(), service.UpdateTariffRequest{
		BaseFare:        req.BaseFare,
		PerKmRate:       req.PerKmRate,
		PerMinuteRate:   req.PerMinuteRate,
		MinimumFare:     req.MinimumFare,
		SurgeMultiplier: req.SurgeMultiplier,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TariffResponse{
		BaseFare:        tariff.BaseFare,
		PerKmRate:       tariff.PerKmRate,
		PerMinuteRate:   tariff.PerMinuteRate,
		MinimumFare:     tariff.MinimumFare,
		SurgeMultiplier: tariff.SurgeMultiplier,
	})
}
