package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// Subject roots. Every event lives under the TRIGO stream.
const (
	StreamName      = "TRIGO"
	SubjectTriders  = "trigo.trider"
	SubjectRides    = "trigo.ride"
	SubjectChat     = "trigo.chat"
	subjectWildcard = "trigo.>"
)

// TriderSubject is the subject a trider's positions are published on.
func TriderSubject(zoneID, triderID string) string {
	return SubjectTriders + "." + zoneID + "." + triderID
}

// RideSubject is the subject ride events of the given type are published on.
func RideSubject(t domain.RideEventType) string {
	return SubjectRides + "." + string(t)
}

// ChatSubject is the subject a ride's chat messages are published on.
func ChatSubject(rideID string) string {
	return SubjectChat + "." + rideID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectWildcard},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update.
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishTriderPosition(ctx context.Context, pos *domain.TriderPosition) error {
	return p.publish(ctx, TriderSubject(pos.TodaZoneID, pos.TriderID), pos)
}

func (p *Publisher) PublishRideEvent(ctx context.Context, event *domain.RideEvent) error {
	return p.publish(ctx, RideSubject(event.Type), event)
}

func (p *Publisher) PublishChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return p.publish(ctx, ChatSubject(msg.RideID), msg)
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
