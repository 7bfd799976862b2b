package routes

import (
	"context"
	"errors"

	"github.com/chanhyuk05/tayobell/pkg/calls"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
)

type StationRefresher interface {
	Refresh(ctx context.Context, stationID string) *transit.Station
}

type CallService interface {
	RequestCall(ctx context.Context, stationID string, routeNo string) (bool, error)
	CancelCall(ctx context.Context, stationID string, routeNo string) (bool, error)
}

type stationHandler struct {
	stations StationRefresher
	calls    CallService
}

func StationRouter(router fiber.Router, stations StationRefresher, callService CallService) {
	handler := stationHandler{
		stations: stations,
		calls:    callService,
	}

	router.Get("/:stationId", handler.getStation)
	router.Post("/:stationId/bus/:busId/call", handler.callBus)
	router.Delete("/:stationId/bus/:busId/call", handler.cancelBusCall)
}

func (h stationHandler) getStation(c *fiber.Ctx) error {
	station := h.stations.Refresh(c.UserContext(), c.Params("stationId"))

	groups := []string{"basic"}
	if c.QueryBool("detail", false) {
		groups = append(groups, "detailed")
	}

	stationReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, station)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Station",
		})
	}

	return c.JSON(stationReduced)
}

func (h stationHandler) callBus(c *fiber.Ctx) error {
	stationID := c.Params("stationId")
	routeNo := c.Params("busId")

	created, err := h.calls.RequestCall(c.UserContext(), stationID, routeNo)

	var validationError *calls.ValidationError
	switch {
	case errors.As(err, &validationError):
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": validationError.Error(),
		})
	case errors.Is(err, calls.ErrUnknownRoute):
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Bus not found at this station",
		})
	case err != nil:
		log.Error().Err(err).Str("station", stationID).Str("route", routeNo).Msg("Failed to request call")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not request call",
		})
	}

	return c.JSON(fiber.Map{
		"isCalled": created,
	})
}

func (h stationHandler) cancelBusCall(c *fiber.Ctx) error {
	stationID := c.Params("stationId")
	routeNo := c.Params("busId")

	removed, err := h.calls.CancelCall(c.UserContext(), stationID, routeNo)
	if err != nil {
		log.Error().Err(err).Str("station", stationID).Str("route", routeNo).Msg("Failed to cancel call")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not cancel call",
		})
	}

	return c.JSON(fiber.Map{
		"isCalled": removed,
	})
}
