package journal

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the journal over HTTP.
type Handler struct {
	repo Repository
}

// NewHandler constructs a journal handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type recordResponse struct {
	ID               string    `json:"id"`
	SenderWalletID   string    `json:"sender_wallet_id"`
	ReceiverWalletID string    `json:"receiver_wallet_id"`
	AmountSat        int64     `json:"amount_sat"`
	Memo             string    `json:"memo"`
	PaymentHash      string    `json:"payment_hash"`
	PaymentRequest   string    `json:"payment_request"`
	Error            string    `json:"error"`
	CreatedAt        time.Time `json:"created_at"`
}

// Outstanding lists invoices that were minted but never paid.
func (h *Handler) Outstanding(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	records, err := h.repo.Outstanding(c.UserContext(), limit)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]recordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, recordResponse{
			ID:               r.ID,
			SenderWalletID:   r.SenderWalletID,
			ReceiverWalletID: r.ReceiverWalletID,
			AmountSat:        r.AmountSat,
			Memo:             r.Memo,
			PaymentHash:      r.PaymentHash,
			PaymentRequest:   r.PaymentRequest,
			Error:            r.Error,
			CreatedAt:        r.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}
