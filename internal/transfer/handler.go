package transfer

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
)

// Handler exposes the peer-transfer endpoint of the application API.
type Handler struct {
	svc *Service
}

// NewHandler constructs a transfer handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type sendRequest struct {
	Amount      int64  `json:"amount"`
	PayAddress  string `json:"pay_address"`
	Description string `json:"description"`
}

// Send moves funds from the authenticated user's wallet to the payment
// address in the request body.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	senderID, _ := c.Locals("user_id").(string)
	if senderID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}

	res, err := h.svc.Send(c.UserContext(), Input{
		SenderID:         senderID,
		RecipientAddress: req.PayAddress,
		Amount:           req.Amount,
		Description:      req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, ErrRecipientNotFound):
			return fiber.NewError(http.StatusNotFound, "recipient payment address not found")
		case errors.Is(err, ErrSelfTransfer):
			return fiber.NewError(http.StatusBadRequest, "cannot transfer to own wallet")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		default:
			return fiber.NewError(http.StatusInternalServerError, "transfer failed")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transfer_id":    res.TransferID,
		"sender_balance": res.SenderBalance,
	})
}
