package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/payments"
	"github.com/teamzaps/zaps/internal/wallet"
)

// Handler exposes treasury top-ups over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type topUpRequest struct {
	ObjectID string `json:"oid"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Amount   int64  `json:"amount"`
	Memo     string `json:"memo"`
}

type topUpResponse struct {
	WalletID    string `json:"wallet_id"`
	Kind        string `json:"kind"`
	PaymentHash string `json:"payment_hash"`
	BalanceSat  int64  `json:"balance_sat"`
}

// TopUp funds the named user's wallet from the treasury.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	var req topUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ObjectID == "" {
		return fiber.NewError(http.StatusBadRequest, "oid is required")
	}
	kind := ledger.KindAllowance
	if req.Kind != "" {
		parsed, err := ledger.ParseKind(req.Kind)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		kind = parsed
	}

	result, err := h.service.TopUp(c.UserContext(), TopUpInput{
		UserIdentity: req.ObjectID,
		UserName:     req.Name,
		Kind:         kind,
		AmountSat:    req.Amount,
		Memo:         req.Memo,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedKind), errors.Is(err, payments.ErrInvalidTransfer):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, wallet.ErrAmbiguousWallet):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusPaymentRequired, "treasury has insufficient funds")
		case errors.Is(err, ErrTreasuryUnavailable):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		default:
			return fiber.NewError(http.StatusBadGateway, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(topUpResponse{
		WalletID:    result.WalletID,
		Kind:        string(result.Kind),
		PaymentHash: result.PaymentHash,
		BalanceSat:  result.BalanceSat,
	})
}
