package gateway

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

// Handler exposes the add-money endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs a gateway handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createOrderRequest struct {
	Amount int64 `json:"amount"`
}

// CreateOrder registers a pending add-money order for the authenticated user.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}

	order, err := h.svc.CreateOrder(c.UserContext(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		default:
			return fiber.NewError(http.StatusBadGateway, "could not create gateway order")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"order_id":  order.ID,
		"order_ref": order.OrderRef,
		"amount":    order.Amount,
		"status":    order.Status,
	})
}

type verifyPaymentRequest struct {
	OrderRef   string `json:"order_ref"`
	PaymentRef string `json:"payment_ref"`
	Signature  string `json:"signature"`
}

// VerifyPayment resolves a provider callback into a wallet credit.
func (h *Handler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.svc.ConfirmPayment(c.UserContext(), req.OrderRef, req.PaymentRef, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			return fiber.NewError(http.StatusBadRequest, "invalid payment signature")
		case errors.Is(err, ErrOrderNotFound):
			return fiber.NewError(http.StatusNotFound, "order not found")
		case errors.Is(err, ErrDuplicateCallback):
			return fiber.NewError(http.StatusConflict, "order already processed")
		default:
			return fiber.NewError(http.StatusInternalServerError, "payment verification failed")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":         "payment verified and wallet credited",
		"current_balance": entry.BalanceAfter,
	})
}
