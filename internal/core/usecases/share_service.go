package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
)

// ShareLinkTTL is how long a shared ride stays viewable.
const ShareLinkTTL = 24 * time.Hour

// ShareService issues tokens that let anyone follow a ride.
type ShareService struct {
	rides ports.RideRepository
	cache ports.CacheService
	now   func() time.Time
}

// NewShareService creates a new ShareService.
func NewShareService(rides ports.RideRepository, cache ports.CacheService) *ShareService {
	return &ShareService{rides: rides, cache: cache, now: time.Now}
}

// Create issues a share token for an active ride.
func (s *ShareService) Create(ctx context.Context, rideID string) (*domain.ShareLink, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status.Terminal() {
		return nil, fmt.Errorf("%w: ride %s is %s", domain.ErrInvalidTransition, rideID, ride.Status)
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.cache.Set(ctx, shareKey(token), []byte(ride.ID), int(ShareLinkTTL.Seconds())); err != nil {
		return nil, fmt.Errorf("store share token: %w", err)
	}
	return &domain.ShareLink{Token: token, RideID: ride.ID, ExpiresAt: s.now().Add(ShareLinkTTL)}, nil
}

// Resolve returns the ride behind a token. Unknown or expired tokens are ErrNotFound.
func (s *ShareService) Resolve(ctx context.Context, token string) (*domain.RideRequest, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	data, err := s.cache.Get(ctx, shareKey(token))
	if errors.Is(err, ports.ErrCacheMiss) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load share token: %w", err)
	}
	return s.rides.GetByID(ctx, string(data))
}

func shareKey(token string) string {
	return "share:" + token
}
