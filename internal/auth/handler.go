package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/user"
)

// Handler exposes the OTP login endpoints of the application API.
type Handler struct {
	svc *Service
}

// NewHandler constructs an auth handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login verifies credentials and sends a one-time code to the phone.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Phone == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "phone and password are required")
	}

	u, err := h.svc.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "OTP sent successfully",
		"user_id": u.ID,
	})
}

type verifyRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"otp"`
}

// VerifyOTP completes the login flow and returns the session token.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id and otp are required")
	}

	res, err := h.svc.VerifyOTP(c.UserContext(), req.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidOTP):
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired OTP")
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, "verification failed")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token":      res.Token,
		"expires_in": res.ExpiresIn,
		"user": fiber.Map{
			"id":          res.User.ID,
			"name":        res.User.Name,
			"phone":       res.User.Phone,
			"pay_address": res.User.PayAddress,
			"balance":     res.User.Balance,
		},
	})
}
