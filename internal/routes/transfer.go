package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/transfer"
)

// RegisterTransferRoutes mounts the peer-transfer endpoint.
func RegisterTransferRoutes(protected fiber.Router, h *transfer.Handler) {
	protected.Post("/transfers", h.Send)
}
