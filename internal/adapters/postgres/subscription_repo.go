package postgres

import (
	"context"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// SubscriptionRepo implements ports.SubscriptionRepository with pgx.
type SubscriptionRepo struct {
	db *DB
}

// NewSubscriptionRepo creates a new SubscriptionRepo.
func NewSubscriptionRepo(db *DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// Get returns a user's subscription.
func (r *SubscriptionRepo) Get(ctx context.Context, userID string) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.db.Pool.QueryRow(ctx, `
		SELECT user_id, expires_at, updated_at FROM subscriptions WHERE user_id = $1
	`, userID).Scan(&s.UserID, &s.ExpiresAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "subscription", userID)
	}
	return &s, nil
}

// Extend pushes the expiry by d, starting from whichever is later of now and the current expiry.
func (r *SubscriptionRepo) Extend(ctx context.Context, userID string, d time.Duration, now time.Time) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, expires_at, updated_at)
		VALUES ($1, $2::timestamptz + $3::interval, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET expires_at = GREATEST(subscriptions.expires_at, $2::timestamptz) + $3::interval,
		    updated_at = $2
		RETURNING user_id, expires_at, updated_at
	`, userID, now, d).Scan(&s.UserID, &s.ExpiresAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
