package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/auth"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

// RegisterUserRoutes mounts registration and the OTP login flow.
func RegisterUserRoutes(api fiber.Router, users *user.Handler, sessions *auth.Handler) {
	grp := api.Group("/users")
	grp.Post("/register", users.Register)
	grp.Post("/login", sessions.Login)
	grp.Post("/verify-otp", sessions.VerifyOTP)
}
