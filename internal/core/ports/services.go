package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishTriderPosition(ctx context.Context, pos *domain.TriderPosition) error
	PublishRideEvent(ctx context.Context, event *domain.RideEvent) error
	PublishChatMessage(ctx context.Context, msg *domain.ChatMessage) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRideEvents(ctx context.Context, eventType domain.RideEventType, handler func(ctx context.Context, event *domain.RideEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// SettlementStarter hands a completed wallet ride to the settlement saga.
type SettlementStarter interface {
	StartSettlement(ctx context.Context, ride *domain.RideRequest) error
}
