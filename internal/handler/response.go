package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/repository"
	"trike/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropoffLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidTariff),
		errors.Is(err, service.ErrInvalidDriverProfile),
		errors.Is(err, service.ErrInvalidRiderProfile):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrRiderHasLiveRide),
		errors.Is(err, service.ErrAlreadyHandled),
		errors.Is(err, service.ErrDriverUnavailable),
		errors.Is(err, service.ErrDriverOnActiveRide),
		errors.Is(err, service.ErrNotRatable),
		errors.Is(err, service.ErrPhoneTaken),
		errors.Is(err, repository.ErrStatusConflict):
		return http.StatusConflict

	// Forbidden
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
