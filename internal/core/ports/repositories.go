package ports

import (
	"context"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// ZoneRepository persists TODA zones.
type ZoneRepository interface {
	Upsert(ctx context.Context, zone *domain.TodaZone) error
	GetByID(ctx context.Context, id string) (*domain.TodaZone, error)
	// List returns zones in their stable dispatch order (by id).
	List(ctx context.Context) ([]domain.TodaZone, error)
}

// TriderFilter narrows a trider listing. Empty fields match everything.
type TriderFilter struct {
	ZoneID string
	Status domain.TriderStatus
}

// TriderRepository persists triders and their live state.
type TriderRepository interface {
	Upsert(ctx context.Context, trider *domain.Trider) error
	GetByID(ctx context.Context, id string) (*domain.Trider, error)
	List(ctx context.Context, filter TriderFilter) ([]domain.Trider, error)
	// UpdatePosition stores a new location and path progress. A non-empty
	// expect only writes while the trider still has that status, otherwise
	// it returns domain.ErrConflict.
	UpdatePosition(ctx context.Context, id string, loc domain.Coordinate, pathIndex int, expect domain.TriderStatus) error
	// SetStatus changes the status. With from given, it only writes while the
	// current status is one of them, otherwise it returns domain.ErrConflict.
	// Moving to available or offline clears any path.
	SetStatus(ctx context.Context, id string, status domain.TriderStatus, from ...domain.TriderStatus) error
}

// RideFilter narrows a ride listing. Empty fields match everything.
type RideFilter struct {
	Status      domain.RideStatus
	TriderID    string
	PassengerID string
	Limit       int
	Offset      int
}

// RideRepository persists ride requests.
type RideRepository interface {
	Create(ctx context.Context, ride *domain.RideRequest) error
	GetByID(ctx context.Context, id string) (*domain.RideRequest, error)
	List(ctx context.Context, filter RideFilter) ([]domain.RideRequest, int, error)
	// AssignTrider atomically moves a pending ride to assigned and an
	// available trider to assigned with the given path. It returns
	// domain.ErrConflict if either precondition no longer holds.
	AssignTrider(ctx context.Context, rideID, triderID string, path []domain.Coordinate) (*domain.RideRequest, error)
	// Transition moves a ride from one status to another, returning
	// domain.ErrConflict when the ride is no longer in from.
	Transition(ctx context.Context, id string, from, to domain.RideStatus) (*domain.RideRequest, error)
	// MarkPaid sets the payment status; it reports false if already paid.
	MarkPaid(ctx context.Context, id string) (bool, error)
}

// WalletRepository persists wallets and their ledger.
type WalletRepository interface {
	// Get returns domain.ErrNotFound for a user who never transacted.
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	// Apply records a ledger entry and adjusts the balance in one
	// transaction. It returns domain.ErrDuplicate if the reference was
	// already applied and domain.ErrInsufficientFunds if the balance
	// would go negative.
	Apply(ctx context.Context, tx *domain.WalletTransaction) (*domain.Wallet, error)
	Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, int, error)
}

// SubscriptionRepository persists premium memberships.
type SubscriptionRepository interface {
	Get(ctx context.Context, userID string) (*domain.Subscription, error)
	// Extend pushes the expiry by d from max(now, current expiry).
	Extend(ctx context.Context, userID string, d time.Duration, now time.Time) (*domain.Subscription, error)
}

// WebhookEventRepository remembers processed gateway events.
type WebhookEventRepository interface {
	// Record reports false if the event id was already recorded.
	Record(ctx context.Context, eventID, eventType string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}
