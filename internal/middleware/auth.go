package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/auth"
)

// BearerAuth validates the presented session token against the user's single
// active-token slot. A request with a missing, expired or superseded token is
// treated as anonymous and rejected.
func BearerAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		u, err := svc.Authenticate(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "token is invalid or expired")
		}

		c.Locals("user_id", u.ID)
		c.Locals("user_phone", u.Phone)
		return c.Next()
	}
}
