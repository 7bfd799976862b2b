package api

import (
	"github.com/chanhyuk05/tayobell/pkg/api/routes"
	"github.com/chanhyuk05/tayobell/pkg/app"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewServer(a *app.App) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger(a.Metrics))

	webApp.Get("/health", routes.Health)
	webApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.Metrics.Registry, promhttp.HandlerOpts{})))

	routes.RealtimeRouter(webApp.Group("/api"), a.Hub)

	group := webApp.Group("/api/v2")

	group.Get("version", routes.APIVersion)

	routes.StationRouter(group.Group("/station"), a.Ingestion, a.Calls)
	routes.BusRouter(group.Group("/bus"), a.Status)

	return webApp
}
