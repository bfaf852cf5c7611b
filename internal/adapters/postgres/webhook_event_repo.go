package postgres

import "context"

// WebhookEventRepo implements ports.WebhookEventRepository with pgx.
type WebhookEventRepo struct {
	db *DB
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(db *DB) *WebhookEventRepo {
	return &WebhookEventRepo{db: db}
}

// Record stores the event id, reporting false if it was seen before.
func (r *WebhookEventRepo) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO processed_webhook_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Forget removes an event so a redelivery is processed again.
func (r *WebhookEventRepo) Forget(ctx context.Context, eventID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM processed_webhook_events WHERE event_id = $1`, eventID)
	return err
}
