package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes exposes liveness and readiness probes.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "ok",
			"app":    d.Cfg.AppName,
			"env":    d.Cfg.AppEnv,
		}

		if d.DB != nil {
			if err := d.DB.Ping(c.UserContext()); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				return c.Status(http.StatusServiceUnavailable).JSON(status)
			}
			status["database"] = "ok"
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(c.UserContext()).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
				return c.Status(http.StatusServiceUnavailable).JSON(status)
			}
			status["redis"] = "ok"
		}

		return c.JSON(status)
	})
}
