package feed

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teamzaps/zaps/internal/history"
	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/wallet"
)

// Handler exposes feed, log and allowance endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a feed handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type partyResponse struct {
	UserID      string `json:"user_id,omitempty"`
	WalletID    string `json:"wallet_id,omitempty"`
	DisplayName string `json:"display_name"`
	Resolved    bool   `json:"resolved"`
}

type transactionResponse struct {
	CheckingID string        `json:"checking_id"`
	AmountSat  int64         `json:"amount_sat"`
	Memo       string        `json:"memo"`
	Label      string        `json:"label"`
	Direction  string        `json:"direction"`
	Time       time.Time     `json:"time"`
	From       partyResponse `json:"from"`
	To         partyResponse `json:"to"`
}

func toParty(c history.Counterpart) partyResponse {
	ref := c.Ref()
	return partyResponse{
		UserID:      ref.UserID,
		WalletID:    ref.WalletID,
		DisplayName: c.DisplayName(),
		Resolved:    c.IsResolved(),
	}
}

func toResponse(txs []history.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			CheckingID: tx.CheckingID,
			AmountSat:  tx.AmountSat(),
			Memo:       tx.Memo,
			Label:      tx.Label(),
			Direction:  string(tx.Direction()),
			Time:       time.Unix(tx.Time, 0).UTC(),
			From:       toParty(tx.From),
			To:         toParty(tx.To),
		})
	}
	return out
}

func sinceParam(c *fiber.Ctx) time.Time {
	if v := c.QueryInt("since", 0); v > 0 {
		return time.Unix(int64(v), 0)
	}
	return time.Time{}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedKind):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, wallet.ErrAmbiguousWallet):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}
}

// Feed lists zaps received across the team.
func (h *Handler) Feed(c *fiber.Ctx) error {
	txs, err := h.service.Feed(c.UserContext(), sinceParam(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(txs))
}

// Leaderboard ranks receivers.
func (h *Handler) Leaderboard(c *fiber.Ctx) error {
	rows, err := h.service.Leaderboard(c.UserContext(), sinceParam(c), c.QueryInt("limit", 10))
	if err != nil {
		return mapError(err)
	}
	out := make([]fiber.Map, 0, len(rows))
	for i, r := range rows {
		out = append(out, fiber.Map{
			"rank":      i + 1,
			"receiver":  toParty(r.Receiver),
			"total_sat": r.TotalSat,
			"zaps":      r.Zaps,
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Transactions lists the caller's wallet history for :kind.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	name, _ := c.Locals("user_name").(string)
	kind, err := ledger.ParseKind(c.Params("kind"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	txs, err := h.service.Log(c.UserContext(), uid, name, kind, history.ParseView(c.Query("view")))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(txs))
}

// Allowance summarises the caller's allowance wallet.
func (h *Handler) Allowance(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	name, _ := c.Locals("user_name").(string)
	summary, err := h.service.Allowance(c.UserContext(), uid, name)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id":     summary.WalletID,
		"available_sat": summary.AvailableSat,
		"spent_sat":     summary.SpentSat,
		"spent_percent": summary.SpentPercent,
		"since":         summary.Since,
	})
}
