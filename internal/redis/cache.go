package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches ride status snapshots for polling clients and tracks the
// set of available drivers.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// SnapshotTTL is short because ride status changes quickly during dispatch.
const SnapshotTTL = 10 * time.Second

const (
	snapshotPrefix      = "cache:ride:"
	availableDriversKey = "drivers:available"
)

// RideSnapshot is the cached view served to status polls: the ride plus the
// assigned driver, if any.
type RideSnapshot struct {
	RideID       string  `json:"ride_id"`
	RiderID      string  `json:"rider_id"`
	Status       string  `json:"status"`
	Fare         float64 `json:"fare"`
	DriverID     string  `json:"driver_id,omitempty"`
	DriverName   string  `json:"driver_name,omitempty"`
	DriverPhone  string  `json:"driver_phone,omitempty"`
	PlateNo      string  `json:"plate_no,omitempty"`
	DriverLat    float64 `json:"driver_lat,omitempty"`
	DriverLng    float64 `json:"driver_lng,omitempty"`
	DriverRating float64 `json:"driver_rating,omitempty"`
	UpdatedAt    string  `json:"updated_at"`
}

// GetSnapshot retrieves a cached ride snapshot. A cache miss returns nil.
func (s *CacheStore) GetSnapshot(ctx context.Context, rideID string) (*RideSnapshot, error) {
	data, err := s.client.Get(ctx, snapshotPrefix+rideID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var snap RideSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// SetSnapshot caches a ride snapshot.
func (s *CacheStore) SetSnapshot(ctx context.Context, snap *RideSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, snapshotPrefix+snap.RideID, data, SnapshotTTL).Err()
}

// InvalidateSnapshot drops the cached snapshot after a transition so polls
// never serve a stale status longer than one round trip.
func (s *CacheStore) InvalidateSnapshot(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, snapshotPrefix+rideID).Err()
}

// AddAvailableDriver adds a driver to the available set.
func (s *CacheStore) AddAvailableDriver(ctx context.Context, driverID string) error {
	return s.client.SAdd(ctx, availableDriversKey, driverID).Err()
}

// RemoveAvailableDriver removes a driver from the available set.
func (s *CacheStore) RemoveAvailableDriver(ctx context.Context, driverID string) error {
	return s.client.SRem(ctx, availableDriversKey, driverID).Err()
}

// GetAvailableDrivers returns the IDs in the available set.
func (s *CacheStore) GetAvailableDrivers(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, availableDriversKey).Result()
}
