package routes

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
	"github.com/offgrid-pay/offgridpay/internal/money"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

// RegisterWalletRoutes mounts the authenticated balance and statement views.
func RegisterWalletRoutes(protected fiber.Router, users user.Repository, entries *ledger.Service) {
	protected.Get("/users/balance", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		u, err := users.FindByID(c.UserContext(), userID)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return c.JSON(fiber.Map{
			"balance":           u.Balance,
			"balance_formatted": money.Format(u.Balance),
			"pay_address":       u.PayAddress,
		})
	})

	protected.Get("/users/statement", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit"))

		list, err := entries.EntriesForUser(c.UserContext(), userID, limit)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not load statement")
		}

		out := make([]fiber.Map, 0, len(list))
		for _, e := range list {
			out = append(out, fiber.Map{
				"id":             e.ID,
				"amount":         e.Amount,
				"direction":      e.Direction,
				"balance_before": e.BalanceBefore,
				"balance_after":  e.BalanceAfter,
				"status":         e.Status,
				"note":           e.Note,
				"created_at":     e.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{"entries": out})
	})
}
