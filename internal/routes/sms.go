package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/sms"
)

// RegisterSMSRoutes mounts the inbound message webhook. The endpoint is
// public: carriers do not authenticate, so the handler always acknowledges
// with 200 and resolves identity from the sender's phone number.
func RegisterSMSRoutes(api fiber.Router, h *sms.Handler) {
	api.Post("/sms/webhook", h.Webhook)
}
