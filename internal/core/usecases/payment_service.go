package usecases

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/pkg/metrics"
)

// SubscriptionMonth is the premium time bought per paid month.
const SubscriptionMonth = 30 * 24 * time.Hour

// PaymentService validates gateway webhooks and applies them.
type PaymentService struct {
	secret  []byte
	wallets *WalletService
	rides   *RideService
	subs    ports.SubscriptionRepository
	events  ports.WebhookEventRepository
	now     func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	secret string,
	wallets *WalletService,
	rides *RideService,
	subs ports.SubscriptionRepository,
	events ports.WebhookEventRepository,
) *PaymentService {
	return &PaymentService{
		secret:  []byte(secret),
		wallets: wallets,
		rides:   rides,
		subs:    subs,
		events:  events,
		now:     time.Now,
	}
}

// VerifySignature checks the hex HMAC-SHA256 of body in constant time.
// An unconfigured secret rejects everything.
func (s *PaymentService) VerifySignature(body []byte, signature string) error {
	if len(s.secret) == 0 || signature == "" {
		return domain.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

type webhookEnvelope struct {
	Data struct {
		ID         string          `json:"id"`
		Attributes eventAttributes `json:"attributes"`
	} `json:"data"`
	// Unwrapped event objects carry these at the top level.
	ID         string          `json:"id"`
	Attributes eventAttributes `json:"attributes"`
}

type eventAttributes struct {
	Type     string `json:"type"`
	Livemode bool   `json:"livemode"`
	Data     struct {
		ID         string `json:"id"`
		Attributes struct {
			Amount      int64          `json:"amount"`
			Description string         `json:"description"`
			Status      string         `json:"status"`
			Metadata    map[string]any `json:"metadata"`
			LastError   *struct {
				Code   string `json:"code"`
				Detail string `json:"detail"`
			} `json:"last_payment_error"`
		} `json:"attributes"`
	} `json:"data"`
}

// ParseEvent decodes a webhook body into one of the domain.PaymentEvent
// variants. Unknown event types and malformed payloads are ErrInvalidInput.
func (s *PaymentService) ParseEvent(body []byte) (domain.PaymentEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook body: %v", domain.ErrInvalidInput, err)
	}
	id, attrs := env.Data.ID, env.Data.Attributes
	if id == "" {
		id, attrs = env.ID, env.Attributes
	}
	if id == "" {
		return nil, fmt.Errorf("%w: webhook event id missing", domain.ErrInvalidInput)
	}

	header := domain.PaymentEventHeader{ID: id, Livemode: attrs.Livemode, ReceivedAt: s.now()}
	res := attrs.Data
	if res.Attributes.Amount < 0 {
		return nil, fmt.Errorf("%w: negative amount", domain.ErrInvalidInput)
	}

	switch attrs.Type {
	case domain.EventLinkPaymentPaid:
		return parseLinkPayment(header, res.ID, res.Attributes.Amount, res.Attributes.Metadata)
	case domain.EventPaymentPaid:
		return domain.PaymentPaid{
			PaymentEventHeader: header,
			PaymentID:          res.ID,
			AmountCentavos:     res.Attributes.Amount,
			Description:        res.Attributes.Description,
		}, nil
	case domain.EventPaymentFailed:
		ev := domain.PaymentFailed{
			PaymentEventHeader: header,
			PaymentID:          res.ID,
			AmountCentavos:     res.Attributes.Amount,
		}
		if le := res.Attributes.LastError; le != nil {
			ev.Reason = strings.TrimSpace(le.Code + " " + le.Detail)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %w %q", domain.ErrInvalidInput, domain.ErrUnsupportedEvent, attrs.Type)
	}
}

func parseLinkPayment(header domain.PaymentEventHeader, linkID string, amount int64, md map[string]any) (domain.PaymentEvent, error) {
	ev := domain.LinkPaymentPaid{
		PaymentEventHeader: header,
		LinkID:             linkID,
		AmountCentavos:     amount,
		Purpose:            domain.PaymentPurpose(metaString(md, "type")),
		UserID:             metaString(md, "userId", "user_id"),
		RideID:             metaString(md, "rideId", "ride_id"),
	}

	switch ev.Purpose {
	case domain.PurposeWalletTopUp:
		if ev.UserID == "" || ev.AmountCentavos <= 0 {
			return nil, fmt.Errorf("%w: wallet top-up needs a user and a positive amount", domain.ErrInvalidInput)
		}
	case domain.PurposeRidePayment:
		if ev.RideID == "" {
			return nil, fmt.Errorf("%w: ride payment needs a ride id", domain.ErrInvalidInput)
		}
	case domain.PurposeSubscription:
		if ev.UserID == "" {
			return nil, fmt.Errorf("%w: subscription needs a user", domain.ErrInvalidInput)
		}
		ev.Months = 1
		if m := metaString(md, "months"); m != "" {
			n, err := strconv.Atoi(m)
			if err != nil || n <= 0 || n > 24 {
				return nil, fmt.Errorf("%w: months must be 1-24, got %q", domain.ErrInvalidInput, m)
			}
			ev.Months = n
		}
	default:
		return nil, fmt.Errorf("%w: unknown payment purpose %q", domain.ErrInvalidInput, ev.Purpose)
	}
	return ev, nil
}

// metaString returns the first non-empty value among keys, formatting numbers.
func metaString(md map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := md[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// Handle applies an event once. Replays of an already processed event
// return nil without side effects.
func (s *PaymentService) Handle(ctx context.Context, ev domain.PaymentEvent) (err error) {
	ctx, span := tracer.Start(ctx, "PaymentService.Handle")
	span.SetAttributes(attribute.String("event.id", ev.EventID()), attribute.String("event.type", ev.EventType()))
	defer func() {
		outcome := "applied"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.PaymentEvents.WithLabelValues(ev.EventType(), outcome).Inc()
		span.End()
	}()

	first, err := s.events.Record(ctx, ev.EventID(), ev.EventType())
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	if !first {
		slog.Info("duplicate webhook event", "event_id", ev.EventID(), "type", ev.EventType())
		return nil
	}

	if err := s.apply(ctx, ev); err != nil {
		if ferr := s.events.Forget(ctx, ev.EventID()); ferr != nil {
			slog.Error("forget failed webhook event", "event_id", ev.EventID(), "error", ferr)
		}
		return err
	}
	return nil
}

func (s *PaymentService) apply(ctx context.Context, ev domain.PaymentEvent) error {
	switch e := ev.(type) {
	case domain.LinkPaymentPaid:
		switch e.Purpose {
		case domain.PurposeWalletTopUp:
			_, err := s.wallets.TopUp(ctx, e.UserID, e.AmountCentavos, e.ID)
			return err
		case domain.PurposeRidePayment:
			return s.rides.MarkPaid(ctx, e.RideID)
		case domain.PurposeSubscription:
			sub, err := s.subs.Extend(ctx, e.UserID, time.Duration(e.Months)*SubscriptionMonth, s.now())
			if err != nil {
				return fmt.Errorf("extend subscription: %w", err)
			}
			slog.Info("subscription extended", "user_id", e.UserID, "expires_at", sub.ExpiresAt)
			return nil
		}
		return fmt.Errorf("%w: unknown payment purpose %q", domain.ErrInvalidInput, e.Purpose)
	case domain.PaymentPaid:
		slog.Info("payment received", "payment_id", e.PaymentID, "amount_centavos", e.AmountCentavos)
		return nil
	case domain.PaymentFailed:
		slog.Warn("payment failed", "payment_id", e.PaymentID, "amount_centavos", e.AmountCentavos, "reason", e.Reason)
		return nil
	}
	return errors.New("unhandled payment event")
}
