package service

import "errors"

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropoffLocation is returned when dropoff coordinates are invalid.
	ErrInvalidDropoffLocation = errors.New("invalid dropoff location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidRating is returned when a rating is outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidTariff is returned when a tariff has negative rates.
	ErrInvalidTariff = errors.New("invalid tariff values")

	// ErrForbidden is returned when the acting party may not perform the
	// operation.
	ErrForbidden = errors.New("actor not permitted")

	// ErrRiderHasLiveRide is returned when a rider with a live booking tries
	// to create another one.
	ErrRiderHasLiveRide = errors.New("rider already has an active booking")

	// ErrAlreadyHandled is returned when a status-guarded action finds the
	// ride in a different state than expected: a late or duplicate request
	// that another writer beat to the punch.
	ErrAlreadyHandled = errors.New("booking already handled")

	// ErrDriverUnavailable is returned when dispatch targets a driver who is
	// not available for assignment.
	ErrDriverUnavailable = errors.New("driver not available for dispatch")

	// ErrDriverOnActiveRide is returned when a driver tries to go offline
	// with an active ride underway.
	ErrDriverOnActiveRide = errors.New("driver has an active ride")

	// ErrNotRatable is returned when rating a ride that is not completed or
	// has no driver.
	ErrNotRatable = errors.New("ride cannot be rated")

	// ErrInvalidDriverProfile is returned when driver registration fields
	// are missing.
	ErrInvalidDriverProfile = errors.New("name, phone and plate number are required")

	// ErrInvalidRiderProfile is returned when rider registration fields are
	// missing.
	ErrInvalidRiderProfile = errors.New("name and phone are required")

	// ErrPhoneTaken is returned when registering with a phone number that is
	// already registered.
	ErrPhoneTaken = errors.New("phone number already registered")
)
