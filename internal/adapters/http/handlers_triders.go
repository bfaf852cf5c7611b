package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
)

// ListTridersHandler returns triders, optionally filtered by zone and status.
func ListTridersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := ports.TriderFilter{
			ZoneID: c.Query("zone"),
			Status: domain.TriderStatus(c.Query("status")),
		}
		triders, err := deps.Triders.List(c.UserContext(), filter)
		if err != nil {
			return errDomain(c, err)
		}
		if triders == nil {
			triders = []domain.Trider{}
		}
		return c.JSON(triders)
	}
}

// GetTriderHandler returns a single trider.
func GetTriderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := deps.Triders.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(t)
	}
}

// RegisterTriderHandler adds a trider to a zone.
func RegisterTriderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t domain.Trider
		if err := c.BodyParser(&t); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Triders.Register(c.UserContext(), &t); err != nil {
			return errDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// UpdateTriderLocationHandler records a trider's reported position.
func UpdateTriderLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var loc domain.Coordinate
		if err := c.BodyParser(&loc); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		pos, err := deps.Triders.UpdateLocation(c.UserContext(), c.Params("id"), loc)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(pos)
	}
}

type statusRequest struct {
	Status domain.TriderStatus `json:"status"`
}

// SetTriderStatusHandler toggles a trider between available and offline.
func SetTriderStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		t, err := deps.Triders.SetStatus(c.UserContext(), c.Params("id"), req.Status)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(t)
	}
}
