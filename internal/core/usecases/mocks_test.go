package usecases_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
)

// --- Mock ZoneRepository ---

type mockZoneRepo struct {
	mu    sync.Mutex
	zones []domain.TodaZone
}

func (m *mockZoneRepo) Upsert(ctx context.Context, zone *domain.TodaZone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.zones {
		if m.zones[i].ID == zone.ID {
			m.zones[i] = *zone
			return nil
		}
	}
	m.zones = append(m.zones, *zone)
	return nil
}

func (m *mockZoneRepo) GetByID(ctx context.Context, id string) (*domain.TodaZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, z := range m.zones {
		if z.ID == id {
			return &z, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockZoneRepo) List(ctx context.Context) ([]domain.TodaZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TodaZone(nil), m.zones...), nil
}

// --- Mock TriderRepository ---

type mockTriderRepo struct {
	mu      sync.Mutex
	triders map[string]*domain.Trider

	setStatusFn func(ctx context.Context, id string, status domain.TriderStatus) error
	// afterRead runs once a read has released the lock, to interleave a concurrent write.
	afterRead func()
}

func (m *mockTriderRepo) readDone() {
	if fn := m.afterRead; fn != nil {
		m.afterRead = nil
		fn()
	}
}

// set overwrites a trider's status and path as another writer would.
func (m *mockTriderRepo) set(id string, status domain.TriderStatus, path []domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triders[id].Status, m.triders[id].Path = status, path
}

func newMockTriderRepo(ts ...domain.Trider) *mockTriderRepo {
	m := &mockTriderRepo{triders: map[string]*domain.Trider{}}
	for i := range ts {
		t := ts[i]
		m.triders[t.ID] = &t
	}
	return m
}

func (m *mockTriderRepo) Upsert(ctx context.Context, t *domain.Trider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.triders[t.ID] = &cp
	return nil
}

func (m *mockTriderRepo) GetByID(ctx context.Context, id string) (*domain.Trider, error) {
	defer m.readDone()
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.triders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTriderRepo) List(ctx context.Context, f ports.TriderFilter) ([]domain.Trider, error) {
	defer m.readDone()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trider
	for _, t := range m.triders {
		if f.ZoneID != "" && t.TodaZoneID != f.ZoneID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTriderRepo) UpdatePosition(ctx context.Context, id string, loc domain.Coordinate, pathIndex int, expect domain.TriderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.triders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if expect != "" && t.Status != expect {
		return domain.ErrConflict
	}
	t.Location, t.PathIndex = loc, pathIndex
	return nil
}

func (m *mockTriderRepo) SetStatus(ctx context.Context, id string, status domain.TriderStatus, from ...domain.TriderStatus) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.triders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if len(from) > 0 && !slices.Contains(from, t.Status) {
		return domain.ErrConflict
	}
	t.Status = status
	if status == domain.TriderAvailable || status == domain.TriderOffline {
		t.Path, t.PathIndex = nil, 0
	}
	return nil
}

func (m *mockTriderRepo) get(id string) domain.Trider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.triders[id]
}

// --- Mock RideRepository ---

type mockRideRepo struct {
	mu      sync.Mutex
	rides   map[string]*domain.RideRequest
	triders *mockTriderRepo

	assignFn func(ctx context.Context, rideID, triderID string, path []domain.Coordinate) (*domain.RideRequest, error)
}

func newMockRideRepo(triders *mockTriderRepo, rides ...domain.RideRequest) *mockRideRepo {
	m := &mockRideRepo{rides: map[string]*domain.RideRequest{}, triders: triders}
	for i := range rides {
		r := rides[i]
		m.rides[r.ID] = &r
	}
	return m
}

func (m *mockRideRepo) Create(ctx context.Context, r *domain.RideRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rides[r.ID] = &cp
	return nil
}

func (m *mockRideRepo) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRideRepo) List(ctx context.Context, f ports.RideFilter) ([]domain.RideRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.RideRequest
	for _, r := range m.rides {
		if f.Status == "" || r.Status == f.Status {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (m *mockRideRepo) AssignTrider(ctx context.Context, rideID, triderID string, path []domain.Coordinate) (*domain.RideRequest, error) {
	if m.assignFn != nil {
		return m.assignFn(ctx, rideID, triderID, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideID]
	if !ok || r.Status != domain.RidePending {
		return nil, domain.ErrConflict
	}
	m.triders.mu.Lock()
	t, ok := m.triders.triders[triderID]
	if !ok || t.Status != domain.TriderAvailable {
		m.triders.mu.Unlock()
		return nil, domain.ErrConflict
	}
	t.Status, t.Path, t.PathIndex = domain.TriderAssigned, path, 0
	m.triders.mu.Unlock()

	r.Status, r.AssignedTriderID = domain.RideAssigned, triderID
	cp := *r
	return &cp, nil
}

func (m *mockRideRepo) Transition(ctx context.Context, id string, from, to domain.RideStatus) (*domain.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok || r.Status != from {
		return nil, domain.ErrConflict
	}
	r.Status = to
	cp := *r
	return &cp, nil
}

func (m *mockRideRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.PaymentStatus == domain.PaymentStatusPaid {
		return false, nil
	}
	r.PaymentStatus = domain.PaymentStatusPaid
	return true, nil
}

// --- Mock WalletRepository ---

type mockWalletRepo struct {
	balances map[string]int64
	refs     map[string]bool
	txs      []domain.WalletTransaction
}

func newMockWalletRepo() *mockWalletRepo {
	return &mockWalletRepo{balances: map[string]int64{}, refs: map[string]bool{}}
}

func (m *mockWalletRepo) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	b, ok := m.balances[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Wallet{UserID: userID, BalanceCentavos: b}, nil
}

func (m *mockWalletRepo) Apply(ctx context.Context, tx *domain.WalletTransaction) (*domain.Wallet, error) {
	if m.refs[string(tx.Kind)+":"+tx.Reference] {
		return nil, domain.ErrDuplicate
	}
	if m.balances[tx.UserID]+tx.AmountCentavos < 0 {
		return nil, domain.ErrInsufficientFunds
	}
	m.refs[string(tx.Kind)+":"+tx.Reference] = true
	m.balances[tx.UserID] += tx.AmountCentavos
	m.txs = append(m.txs, *tx)
	return &domain.Wallet{UserID: tx.UserID, BalanceCentavos: m.balances[tx.UserID]}, nil
}

func (m *mockWalletRepo) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, int, error) {
	var out []domain.WalletTransaction
	for _, tx := range m.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, len(out), nil
}

// --- Mock SubscriptionRepository ---

type mockSubRepo struct {
	extendFn func(ctx context.Context, userID string, d time.Duration, now time.Time) (*domain.Subscription, error)
}

func (m *mockSubRepo) Get(ctx context.Context, userID string) (*domain.Subscription, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSubRepo) Extend(ctx context.Context, userID string, d time.Duration, now time.Time) (*domain.Subscription, error) {
	if m.extendFn != nil {
		return m.extendFn(ctx, userID, d, now)
	}
	return &domain.Subscription{UserID: userID, ExpiresAt: now.Add(d)}, nil
}

// --- Mock WebhookEventRepository ---

type mockEventRepo struct {
	seen map[string]bool
}

func (m *mockEventRepo) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func (m *mockEventRepo) Forget(ctx context.Context, eventID string) error {
	delete(m.seen, eventID)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	positions []domain.TriderPosition
	rides     []domain.RideEvent
	chats     []domain.ChatMessage
}

func (m *mockPublisher) PublishTriderPosition(ctx context.Context, pos *domain.TriderPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append(m.positions, *pos)
	return nil
}

func (m *mockPublisher) PublishRideEvent(ctx context.Context, ev *domain.RideEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = append(m.rides, *ev)
	return nil
}

func (m *mockPublisher) PublishChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats = append(m.chats, *msg)
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Fixtures ---

func todaZones() []domain.TodaZone {
	return []domain.TodaZone{
		{ID: "1", Name: "ACAPODA", AreaOfOperation: "Admiral Village, Talon Tres", Center: domain.Coordinate{Latitude: 14.4403, Longitude: 121.0006}, RadiusKm: 0.5},
		{ID: "2", Name: "APHDA", AreaOfOperation: "Almanza Dos", Center: domain.Coordinate{Latitude: 14.4369, Longitude: 120.9969}, RadiusKm: 0.5},
		{ID: "18", Name: "TSTODA", AreaOfOperation: "Talon Singko", Center: domain.Coordinate{Latitude: 14.405, Longitude: 121.0}, RadiusKm: 1.5},
	}
}
