package domain

import (
	"time"

	"github.com/samirrijal/trigo/internal/pkg/geospatial"
)

// TodaZone is a tricycle operators and drivers' association dispatch zone.
type TodaZone struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	AreaOfOperation string     `json:"area_of_operation" yaml:"area_of_operation"`
	Center          Coordinate `json:"center" yaml:"center"`
	RadiusKm        float64    `json:"radius_km" yaml:"radius_km"`
	BaseFare        float64    `json:"base_fare,omitempty" yaml:"base_fare"` // PHP; 0 uses the tariff default
	CreatedAt       time.Time  `json:"created_at" yaml:"-"`
}

// Geo returns the zone as a geospatial circle.
func (z TodaZone) Geo() geospatial.Zone {
	return geospatial.Zone{Center: z.Center, RadiusKm: z.RadiusKm}
}

// TriderStatus is the availability of a trider.
type TriderStatus string

const (
	TriderAvailable TriderStatus = "available"
	TriderBusy      TriderStatus = "busy"
	TriderOffline   TriderStatus = "offline"
	TriderAssigned  TriderStatus = "assigned"
)

// Valid reports whether s is a known status.
func (s TriderStatus) Valid() bool {
	switch s {
	case TriderAvailable, TriderBusy, TriderOffline, TriderAssigned:
		return true
	}
	return false
}

// Trider is a tricycle driver registered to one zone.
type Trider struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Location     Coordinate   `json:"location" yaml:"location"`
	Status       TriderStatus `json:"status" yaml:"status"`
	VehicleType  string       `json:"vehicle_type" yaml:"vehicle_type"`
	TodaZoneID   string       `json:"toda_zone_id" yaml:"toda_zone_id"`
	TodaZoneName string       `json:"toda_zone_name,omitempty" yaml:"-"`
	Path         []Coordinate `json:"path,omitempty" yaml:"-"`
	PathIndex    int          `json:"path_index,omitempty" yaml:"-"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"-"`
}

// HasPath reports whether the trider still has path vertices to travel.
func (t *Trider) HasPath() bool {
	return t.PathIndex < len(t.Path)-1
}

// RideStatus is the lifecycle state of a ride request.
type RideStatus string

const (
	RidePending    RideStatus = "pending"
	RideAssigned   RideStatus = "assigned"
	RideInProgress RideStatus = "in-progress"
	RideCompleted  RideStatus = "completed"
	RideCancelled  RideStatus = "cancelled"
)

var rideTransitions = map[RideStatus][]RideStatus{
	RidePending:    {RideAssigned, RideCancelled},
	RideAssigned:   {RideInProgress, RideCancelled},
	RideInProgress: {RideCompleted},
}

// CanTransition reports whether a ride may move from s to next.
func (s RideStatus) CanTransition(next RideStatus) bool {
	for _, allowed := range rideTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s RideStatus) Terminal() bool {
	return len(rideTransitions[s]) == 0
}

// PaymentMethod is how a passenger settles a fare.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentWallet PaymentMethod = "wallet"
)

// PaymentStatus tracks whether a ride fare has been settled.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// RideRequest is a passenger's booking.
type RideRequest struct {
	ID               string        `json:"id"`
	TicketID         string        `json:"ticket_id"`
	PassengerID      string        `json:"passenger_id"`
	PassengerName    string        `json:"passenger_name"`
	Pickup           Coordinate    `json:"pickup"`
	Dropoff          Coordinate    `json:"dropoff"`
	PickupAddress    string        `json:"pickup_address,omitempty"`
	DropoffAddress   string        `json:"dropoff_address,omitempty"`
	Status           RideStatus    `json:"status"`
	Fare             float64       `json:"fare"` // PHP
	DistanceKm       float64       `json:"distance_km"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	AssignedTriderID string        `json:"assigned_trider_id,omitempty"`
	PickupZoneID     string        `json:"pickup_zone_id"`
	RequestedAt      time.Time     `json:"requested_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// FareCentavos returns the fare in the smallest currency unit.
func (r *RideRequest) FareCentavos() int64 {
	return PesosToCentavos(r.Fare)
}

// RideEventType names a ride lifecycle event.
type RideEventType string

const (
	RideEventRequested RideEventType = "requested"
	RideEventAssigned  RideEventType = "assigned"
	RideEventStarted   RideEventType = "started"
	RideEventCompleted RideEventType = "completed"
	RideEventCancelled RideEventType = "cancelled"
)

// RideEvent is published on every ride transition.
type RideEvent struct {
	Type RideEventType `json:"type"`
	Ride RideRequest   `json:"ride"`
	At   time.Time     `json:"at"`
}

// TriderPosition is the live location broadcast for a trider.
type TriderPosition struct {
	TriderID   string       `json:"trider_id"`
	TodaZoneID string       `json:"toda_zone_id"`
	Location   Coordinate   `json:"location"`
	Status     TriderStatus `json:"status"`
	InZone     bool         `json:"in_zone"`
	At         time.Time    `json:"at"`
}

// ChatRole identifies who sent a chat message.
type ChatRole string

const (
	ChatPassenger ChatRole = "passenger"
	ChatTrider    ChatRole = "trider"
)

// ChatMessage is a message between a passenger and their trider.
type ChatMessage struct {
	ID         string    `json:"id"`
	RideID     string    `json:"ride_id"`
	SenderID   string    `json:"sender_id"`
	SenderRole ChatRole  `json:"sender_role"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// Wallet holds a user's prepaid balance.
type Wallet struct {
	UserID          string    `json:"user_id"`
	BalanceCentavos int64     `json:"balance_centavos"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TransactionKind classifies a wallet ledger entry.
type TransactionKind string

const (
	TxTopUp       TransactionKind = "topup"
	TxRidePayment TransactionKind = "ride_payment"
	TxRideEarning TransactionKind = "ride_earning"
	TxRefund      TransactionKind = "refund"
)

// WalletTransaction is one ledger entry. AmountCentavos is signed: debits are negative.
type WalletTransaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Kind           TransactionKind `json:"kind"`
	AmountCentavos int64           `json:"amount_centavos"`
	Reference      string          `json:"reference"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Subscription is a premium membership window.
type Subscription struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShareLink exposes a ride to someone without an account.
type ShareLink struct {
	Token     string    `json:"token"`
	RideID    string    `json:"ride_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FareQuote itemises a fare.
type FareQuote struct {
	DistanceKm     float64 `json:"distance_km"`
	BaseFare       float64 `json:"base_fare"`
	DistanceFare   float64 `json:"distance_fare"`
	ConvenienceFee float64 `json:"convenience_fee"`
	Total          float64 `json:"total"`
	TotalCentavos  int64   `json:"total_centavos"`
}

// PesosToCentavos converts a peso amount, rounding to the nearest centavo.
func PesosToCentavos(pesos float64) int64 {
	if pesos < 0 {
		return -int64(-pesos*100 + 0.5)
	}
	return int64(pesos*100 + 0.5)
}
