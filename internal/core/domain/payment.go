package domain

import "time"

// PaymentPurpose is the metadata "type" attached to a payment link.
type PaymentPurpose string

const (
	PurposeWalletTopUp  PaymentPurpose = "wallet_topup"
	PurposeRidePayment  PaymentPurpose = "ride_payment"
	PurposeSubscription PaymentPurpose = "subscription"
)

// Webhook event type names sent by the payment gateway.
const (
	EventLinkPaymentPaid = "link.payment.paid"
	EventPaymentPaid     = "payment.paid"
	EventPaymentFailed   = "payment.failed"
)

// PaymentEvent is one validated gateway webhook event. The concrete types
// are LinkPaymentPaid, PaymentPaid and PaymentFailed.
type PaymentEvent interface {
	EventID() string
	EventType() string
}

// PaymentEventHeader carries the fields common to every event.
type PaymentEventHeader struct {
	ID         string    `json:"id"`
	Livemode   bool      `json:"livemode"`
	ReceivedAt time.Time `json:"received_at"`
}

func (h PaymentEventHeader) EventID() string { return h.ID }

// LinkPaymentPaid reports a paid payment link. Exactly one of UserID or
// RideID is meaningful depending on Purpose.
type LinkPaymentPaid struct {
	PaymentEventHeader
	LinkID         string         `json:"link_id"`
	Purpose        PaymentPurpose `json:"purpose"`
	AmountCentavos int64          `json:"amount_centavos"`
	UserID         string         `json:"user_id,omitempty"`
	RideID         string         `json:"ride_id,omitempty"`
	Months         int            `json:"months,omitempty"`
}

func (LinkPaymentPaid) EventType() string { return EventLinkPaymentPaid }

// PaymentPaid reports a direct payment.
type PaymentPaid struct {
	PaymentEventHeader
	PaymentID      string `json:"payment_id"`
	AmountCentavos int64  `json:"amount_centavos"`
	Description    string `json:"description,omitempty"`
}

func (PaymentPaid) EventType() string { return EventPaymentPaid }

// PaymentFailed reports a declined or errored payment.
type PaymentFailed struct {
	PaymentEventHeader
	PaymentID      string `json:"payment_id"`
	AmountCentavos int64  `json:"amount_centavos"`
	Reason         string `json:"reason,omitempty"`
}

func (PaymentFailed) EventType() string { return EventPaymentFailed }
