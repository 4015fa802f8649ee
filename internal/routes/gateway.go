package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/gateway"
)

// RegisterGatewayRoutes mounts the add-money flow. Order creation requires a
// session; the verify callback is signed by the provider instead.
func RegisterGatewayRoutes(api, protected fiber.Router, h *gateway.Handler) {
	protected.Post("/gateway/orders", h.CreateOrder)
	api.Post("/gateway/verify", h.VerifyPayment)
}
