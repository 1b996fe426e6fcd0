package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/teamzaps/zaps/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type walletResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Kind        string `json:"kind"`
	BalanceSat  int64  `json:"balance_sat"`
	BalanceMsat int64  `json:"balance_msat"`
}

// Mine resolves the caller's wallet of :kind and reports its balance.
func (h *Handler) Mine(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing user")
	}
	userName, _ := c.Locals("user_name").(string)

	kind, err := ledger.ParseKind(c.Params("kind"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	wallet, err := h.service.Resolve(c.UserContext(), userID, userName, kind)
	if err != nil {
		if errors.Is(err, ErrAmbiguousWallet) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}
	balance, err := h.service.Balance(c.UserContext(), wallet)
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}

	return c.Status(http.StatusOK).JSON(walletResponse{
		ID:          wallet.ID,
		OwnerID:     wallet.OwnerID,
		Kind:        string(wallet.Kind),
		BalanceSat:  balance.Sats(),
		BalanceMsat: balance.AmountMsat,
	})
}
