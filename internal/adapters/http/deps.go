package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/trigo/internal/adapters/postgres"
	"github.com/samirrijal/trigo/internal/adapters/valkey"
	"github.com/samirrijal/trigo/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Zones    *usecases.ZoneService
	Triders  *usecases.TriderService
	Rides    *usecases.RideService
	Fares    *usecases.FareCalculator
	Wallets  *usecases.WalletService
	Payments *usecases.PaymentService
	Shares   *usecases.ShareService
	Chat     *usecases.ChatService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
