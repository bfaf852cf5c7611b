package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/core/usecases"
)

// RequestRideHandler books a new ride.
func RequestRideHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.RideInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		ride, err := deps.Rides.Request(c.UserContext(), in)
		if err != nil {
			return errDomain(c, err)
		}
		c.Location("/v1/rides/" + ride.ID)
		return c.Status(fiber.StatusCreated).JSON(ride)
	}
}

// ListRidesHandler returns a page of rides, newest first.
func ListRidesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		rides, total, err := deps.Rides.List(c.UserContext(), ports.RideFilter{
			Status:      domain.RideStatus(c.Query("status")),
			TriderID:    c.Query("trider_id"),
			PassengerID: c.Query("passenger_id"),
			Limit:       limit,
			Offset:      offset,
		})
		if err != nil {
			return errDomain(c, err)
		}
		if rides == nil {
			rides = []domain.RideRequest{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: rides, Pagination: pg})
	}
}

// GetRideHandler returns a single ride.
func GetRideHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ride, err := deps.Rides.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(ride)
	}
}

// RideCandidatesHandler lists available triders for a ride, nearest first.
func RideCandidatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		candidates, err := deps.Rides.Candidates(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		if candidates == nil {
			candidates = []usecases.Candidate{}
		}
		return c.JSON(candidates)
	}
}

type dispatchRequest struct {
	TriderID string `json:"trider_id"`
}

// DispatchRideHandler assigns a trider. An empty body picks the nearest one.
func DispatchRideHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dispatchRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		ride, err := deps.Rides.Dispatch(c.UserContext(), c.Params("id"), req.TriderID)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(ride)
	}
}

// rideStepHandler wraps a lifecycle step that only needs the ride id.
func rideStepHandler(step func(ctx context.Context, id string) (*domain.RideRequest, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ride, err := step(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(ride)
	}
}

// StartRideHandler marks the passenger picked up.
func StartRideHandler(deps *Dependencies) fiber.Handler {
	return rideStepHandler(deps.Rides.Start)
}

// CompleteRideHandler finishes the ride.
func CompleteRideHandler(deps *Dependencies) fiber.Handler {
	return rideStepHandler(deps.Rides.Complete)
}

// CancelRideHandler abandons a pending or assigned ride.
func CancelRideHandler(deps *Dependencies) fiber.Handler {
	return rideStepHandler(deps.Rides.Cancel)
}

// ShareRideHandler issues a tracking link for a ride.
func ShareRideHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Shares == nil {
			return errUnavailable(c, "ride sharing is not configured")
		}
		link, err := deps.Shares.Create(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(link)
	}
}

// ResolveShareHandler returns the ride behind a share token.
func ResolveShareHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Shares == nil {
			return errUnavailable(c, "ride sharing is not configured")
		}
		ride, err := deps.Shares.Resolve(c.UserContext(), c.Params("token"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(ride)
	}
}

type chatRequest struct {
	SenderID string `json:"sender_id"`
	Body     string `json:"body"`
}

// SendMessageHandler relays a chat message between passenger and trider.
func SendMessageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		msg, err := deps.Chat.Send(c.UserContext(), c.Params("id"), req.SenderID, req.Body)
		if err != nil {
			return errDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}
