package routes

import (
	"context"

	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type StatusPoller interface {
	Poll(ctx context.Context, stationID string, routeNo string) (transit.CallDisplayState, error)
}

func BusRouter(router fiber.Router, poller StatusPoller) {
	router.Get("/:stationId/:busId/status", func(c *fiber.Ctx) error {
		stationID := c.Params("stationId")
		routeNo := c.Params("busId")

		state, err := poller.Poll(c.UserContext(), stationID, routeNo)
		if err != nil {
			log.Error().Err(err).Str("station", stationID).Str("route", routeNo).Msg("Failed to check call status")

			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"hasCall": false,
				"error":   "Could not check call status",
			})
		}

		return c.JSON(state)
	})
}
