package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"trike/internal/domain"
	"trike/internal/redis"
	"trike/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ride
	m.rides[ride.ID] = &cp
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	cp := *ride
	return &cp, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		cp := *r
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockRideRepository) GetLiveByRiderID(ctx context.Context, riderID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.RiderID == riderID && r.Status.IsLive() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRideRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.DriverID != driverID {
			continue
		}
		switch r.Status {
		case domain.RideStatusConfirmed, domain.RideStatusArrived, domain.RideStatusInProgress:
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRideRepository) GetOpenByDriverID(ctx context.Context, driverID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.DriverID != driverID {
			continue
		}
		switch r.Status {
		case domain.RideStatusDriverFound, domain.RideStatusConfirmed,
			domain.RideStatusArrived, domain.RideStatusInProgress:
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.rides[ride.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Status != expected {
		return repository.ErrStatusConflict
	}
	cp := *ride
	m.rides[ride.ID] = &cp
	return nil
}

func (m *MockRideRepository) SetRating(ctx context.Context, rideID string, rating int, review string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusCompleted {
		return repository.ErrStatusConflict
	}
	ride.Rating = rating
	ride.Review = review
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver
	// Per-driver rating inputs for RecomputeRating, set by the test.
	ratings map[string][]int

	// Counters for verification
	CreateCallCount          int32
	UpdateStatusCallCount    int32
	RecomputeRatingCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
		ratings: make(map[string][]int),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

// SetRatings sets the rating rows RecomputeRating aggregates for a driver.
func (m *MockDriverRepository) SetRatings(driverID string, ratings []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[driverID] = ratings
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *driver
	m.drivers[driver.ID] = &cp
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *driver
	return &cp, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		cp := *d
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateStatusGuarded(ctx context.Context, id string, from, to domain.DriverStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	if driver.Status != from {
		return repository.ErrStatusConflict
	}
	driver.Status = to
	return nil
}

func (m *MockDriverRepository) UpdatePosition(ctx context.Context, id string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.CurrentLat = lat
	driver.CurrentLng = lng
	driver.HasPosition = true
	driver.LastSeenAt = time.Now()
	return nil
}

func (m *MockDriverRepository) UpdateAggregates(ctx context.Context, id string, netEarnings float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.TotalTrips++
	driver.TotalEarnings += netEarnings
	return nil
}

func (m *MockDriverRepository) IncrementDeclines(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.TotalDeclines++
	return nil
}

func (m *MockDriverRepository) RecomputeRating(ctx context.Context, id string) error {
	atomic.AddInt32(&m.RecomputeRatingCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	ratings := m.ratings[id]
	if len(ratings) == 0 {
		driver.Rating = 0
		driver.TotalRatings = 0
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	driver.Rating = float64(sum) / float64(len(ratings))
	driver.TotalRatings = len(ratings)
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK EARNINGS REPOSITORY
// ──────────────────────────────────────────────

// MockEarningsRepository is a mock implementation of EarningsRepository.
type MockEarningsRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.EarningsRecord

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockEarningsRepository creates a new mock earnings repository.
func NewMockEarningsRepository() *MockEarningsRepository {
	return &MockEarningsRepository{
		records: make(map[string]*domain.EarningsRecord),
	}
}

func (m *MockEarningsRepository) Create(ctx context.Context, rec *domain.EarningsRecord) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *MockEarningsRepository) GetByRideID(ctx context.Context, rideID string) (*domain.EarningsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.RideID == rideID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockEarningsRepository) ListByDriverID(ctx context.Context, driverID string) ([]*domain.EarningsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.EarningsRecord, 0)
	for _, rec := range m.records {
		if rec.DriverID == driverID {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// CountRecords returns the number of settlement records.
func (m *MockEarningsRepository) CountRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// ──────────────────────────────────────────────
// MOCK TARIFF REPOSITORY
// ──────────────────────────────────────────────

// MockTariffRepository is a mock implementation of TariffRepository.
type MockTariffRepository struct {
	mu     sync.RWMutex
	active *domain.FareTariff

	// Error injection
	GetActiveError error
}

// NewMockTariffRepository creates a new mock tariff repository.
func NewMockTariffRepository() *MockTariffRepository {
	return &MockTariffRepository{}
}

func (m *MockTariffRepository) GetActive(ctx context.Context) (*domain.FareTariff, error) {
	if m.GetActiveError != nil {
		return nil, m.GetActiveError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return nil, nil
	}
	cp := *m.active
	return &cp, nil
}

func (m *MockTariffRepository) Upsert(ctx context.Context, tariff *domain.FareTariff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tariff
	m.active = &cp
	return nil
}

// ──────────────────────────────────────────────
// MOCK OUTBOX REPOSITORY
// ──────────────────────────────────────────────

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.Event

	// Counters for verification
	AppendCallCount int32

	// Error injection
	AppendError error
}

// NewMockOutboxRepository creates a new mock outbox repository.
func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Append(ctx context.Context, event *domain.Event) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.events = append(m.events, &cp)
	return nil
}

func (m *MockOutboxRepository) ListPendingForUser(ctx context.Context, recipientID string) ([]*domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Event, 0)
	for _, ev := range m.events {
		if !ev.Delivered && ev.RecipientID == recipientID {
			cp := *ev
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockOutboxRepository) ListPendingForRole(ctx context.Context, role domain.Role) ([]*domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Event, 0)
	for _, ev := range m.events {
		if !ev.Delivered && ev.RecipientID == "" && ev.Role == role {
			cp := *ev
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockOutboxRepository) MarkDelivered(ctx context.Context, eventIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = true
	}
	for _, ev := range m.events {
		if ids[ev.ID] {
			ev.Delivered = true
		}
	}
	return nil
}

// EventsOfType returns appended events of the given type (for assertions).
func (m *MockOutboxRepository) EventsOfType(eventType domain.EventType) []*domain.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Event, 0)
	for _, ev := range m.events {
		if ev.Type == eventType {
			result = append(result, ev)
		}
	}
	return result
}

// CountEvents returns the number of appended events.
func (m *MockOutboxRepository) CountEvents() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// ──────────────────────────────────────────────
// MOCK RIDER REPOSITORY
// ──────────────────────────────────────────────

// MockRiderRepository is a mock implementation of RiderRepository.
type MockRiderRepository struct {
	mu     sync.RWMutex
	riders map[string]*domain.Rider
}

// NewMockRiderRepository creates a new mock rider repository.
func NewMockRiderRepository() *MockRiderRepository {
	return &MockRiderRepository{
		riders: make(map[string]*domain.Rider),
	}
}

// AddRider adds a rider to the mock repository.
func (m *MockRiderRepository) AddRider(rider *domain.Rider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riders[rider.ID] = rider
}

func (m *MockRiderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rider
	m.riders[rider.ID] = &cp
	return nil
}

func (m *MockRiderRepository) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rider, ok := m.riders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rider
	return &cp, nil
}

func (m *MockRiderRepository) GetByPhone(ctx context.Context, phone string) (*domain.Rider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.riders {
		if r.Phone == phone {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK STORE
// ──────────────────────────────────────────────

// MockStore implements repository.Store over the shared mocks. There is no
// real transaction: fn runs against the same repositories the test asserts
// on, and errors surface without rollback. Status guards still apply, so the
// conflict paths behave like production.
type MockStore struct {
	Rides    *MockRideRepository
	Drivers  *MockDriverRepository
	Earnings *MockEarningsRepository
	Outbox   *MockOutboxRepository

	// Counters for verification
	RunInTxCallCount int32
}

// NewMockStore creates a MockStore over the given mocks.
func NewMockStore(rides *MockRideRepository, drivers *MockDriverRepository, earnings *MockEarningsRepository, outbox *MockOutboxRepository) *MockStore {
	return &MockStore{
		Rides:    rides,
		Drivers:  drivers,
		Earnings: earnings,
		Outbox:   outbox,
	}
}

func (m *MockStore) RunInTx(ctx context.Context, fn func(r repository.Repos) error) error {
	atomic.AddInt32(&m.RunInTxCallCount, 1)
	return fn(repository.Repos{
		Rides:    m.Rides,
		Drivers:  m.Drivers,
		Earnings: m.Earnings,
		Outbox:   m.Outbox,
	})
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStore.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.DriverLocation

	// Counters for verification
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.DriverLocation, 0),
	}
}

// AddDriverLocation adds a driver location to the mock store.
func (m *MockLocationStore) AddDriverLocation(loc redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, loc)
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all locations (mock doesn't do real geo filtering).
	result := make([]redis.DriverLocation, len(m.locations))
	copy(result, m.locations)
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, exists := m.locks[driverID]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[driverID] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, driverID)
	return nil
}

// IsLocked checks if a driver is locked (for test assertions).
func (m *MockLockStore) IsLocked(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[driverID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStore.
type MockCacheStore struct {
	mu        sync.RWMutex
	snapshots map[string]*redis.RideSnapshot
	available map[string]bool

	// Counters for verification
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		snapshots: make(map[string]*redis.RideSnapshot),
		available: make(map[string]bool),
	}
}

func (m *MockCacheStore) GetSnapshot(ctx context.Context, rideID string) (*redis.RideSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[rideID]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (m *MockCacheStore) SetSnapshot(ctx context.Context, snap *redis.RideSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	m.snapshots[snap.RideID] = &cp
	return nil
}

func (m *MockCacheStore) InvalidateSnapshot(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, rideID)
	return nil
}

func (m *MockCacheStore) AddAvailableDriver(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available[driverID] = true
	return nil
}

func (m *MockCacheStore) RemoveAvailableDriver(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.available, driverID)
	return nil
}

func (m *MockCacheStore) GetAvailableDrivers(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, 0, len(m.available))
	for id := range m.available {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

// IsAvailable checks the available set (for test assertions).
func (m *MockCacheStore) IsAvailable(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available[driverID]
}

// HasSnapshot checks whether a snapshot is cached (for test assertions).
func (m *MockCacheStore) HasSnapshot(rideID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snapshots[rideID]
	return ok
}
