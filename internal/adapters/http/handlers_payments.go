package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of a webhook body.
const SignatureHeader = "Paymongo-Signature"

// GetWalletHandler returns a user's balance. Unknown users have an empty wallet.
func GetWalletHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := deps.Wallets.Get(c.UserContext(), c.Params("user_id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(w)
	}
}

// WalletTransactionsHandler returns a page of a user's ledger, newest first.
func WalletTransactionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		txs, total, err := deps.Wallets.Transactions(c.UserContext(), c.Params("user_id"), limit, offset)
		if err != nil {
			return errDomain(c, err)
		}
		if txs == nil {
			txs = []domain.WalletTransaction{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: txs, Pagination: pg})
	}
}

// PaymentWebhookHandler receives payment gateway events. Events are
// acknowledged once applied, or when they are of a type nobody handles;
// a 5xx makes the gateway redeliver.
func PaymentWebhookHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := LoggerFromCtx(c.UserContext())
		signature := c.Get(SignatureHeader)
		if signature == "" {
			return errBadRequest(c, "missing signature")
		}

		body := c.Body()
		if err := deps.Payments.VerifySignature(body, signature); err != nil {
			log.Warn("webhook signature rejected", "ip", c.IP())
			return errUnauthorized(c, "invalid signature")
		}

		ev, err := deps.Payments.ParseEvent(body)
		if errors.Is(err, domain.ErrUnsupportedEvent) {
			log.Info("unhandled webhook event", "error", err)
			return c.JSON(fiber.Map{"received": true, "ignored": true})
		}
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		if err := deps.Payments.Handle(c.UserContext(), ev); err != nil {
			log.Error("webhook processing failed", "event_id", ev.EventID(), "type", ev.EventType(), "error", err)
			if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
				return errDomain(c, err)
			}
			return errInternal(c, "webhook processing failed")
		}
		return c.JSON(fiber.Map{"received": true})
	}
}
