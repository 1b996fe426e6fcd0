package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/wallet"
)

// Handler exposes payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type zapRequest struct {
	ReceiverWalletID string `json:"receiver_wallet_id"`
	Amount           int64  `json:"amount"`
	Memo             string `json:"memo"`
}

// Zap sends sats from the caller's Sending wallet to a receiver wallet.
func (h *Handler) Zap(c *fiber.Ctx) error {
	var req zapRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	name, _ := c.Locals("user_name").(string)

	res, err := h.service.Send(c.UserContext(), SendInput{
		SenderIdentity:   uid,
		SenderName:       name,
		ReceiverWalletID: req.ReceiverWalletID,
		Memo:             req.Memo,
		AmountSat:        req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransfer):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrReceiverNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, wallet.ErrAmbiguousWallet):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusPaymentRequired, "insufficient funds")
		case errors.Is(err, ErrInvoiceCreation), errors.Is(err, ErrPaymentFailed):
			return fiber.NewError(http.StatusBadGateway, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"payment_hash": res.PaymentHash,
		"checking_id":  res.CheckingID,
		"amount":       res.AmountSat,
		"completed_at": res.CompletedAt,
	})
}
