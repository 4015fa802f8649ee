package user

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes user lifecycle endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs a user handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PayAddress string `json:"pay_address"`
	Password   string `json:"password"`
}

// Register creates a wallet for a new user.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.Register(c.UserContext(), RegisterInput{
		Name:       req.Name,
		Phone:      req.Phone,
		PayAddress: req.PayAddress,
		Password:   req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fiber.NewError(http.StatusBadRequest, "all fields are required and the password must be at least 6 characters")
		case errors.Is(err, ErrPhoneTaken):
			return fiber.NewError(http.StatusConflict, "phone number already registered")
		case errors.Is(err, ErrAddressTaken):
			return fiber.NewError(http.StatusConflict, "payment address already registered")
		default:
			return fiber.NewError(http.StatusInternalServerError, "registration failed")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":          u.ID,
		"name":        u.Name,
		"phone":       u.Phone,
		"pay_address": u.PayAddress,
		"balance":     u.Balance,
		"created_at":  u.CreatedAt,
	})
}
