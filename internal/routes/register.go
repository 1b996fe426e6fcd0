package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teamzaps/zaps/internal/auth"
	"github.com/teamzaps/zaps/internal/bot"
	"github.com/teamzaps/zaps/internal/feed"
	"github.com/teamzaps/zaps/internal/funding"
	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/journal"
	"github.com/teamzaps/zaps/internal/payments"
	"github.com/teamzaps/zaps/internal/wallet"
)

// RegisterBotRoutes wires the chat activity endpoint.
func RegisterBotRoutes(app *fiber.App, h *bot.Handler) {
	app.Post("/api/messages", h.Messages)
}

// RegisterAuthRoutes wires the development token endpoint.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	r.Post("/auth/dev-token", h.DevToken)
}

// RegisterDirectoryRoutes wires the user directory listing.
func RegisterDirectoryRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/users", h.List)
}

// RegisterWalletRoutes wires the caller's wallets, their history and the
// shared feed.
func RegisterWalletRoutes(r fiber.Router, wallets *wallet.Handler, feeds *feed.Handler) {
	r.Get("/feed", feeds.Feed)
	r.Get("/leaderboard", feeds.Leaderboard)
	r.Get("/me/allowance", feeds.Allowance)
	r.Get("/me/wallets/:kind", wallets.Mine)
	r.Get("/me/wallets/:kind/transactions", feeds.Transactions)
}

// RegisterZapRoutes wires zap submission and the unpaid invoice journal.
func RegisterZapRoutes(r fiber.Router, zaps *payments.Handler, attempts *journal.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/zaps", rateLimiter, zaps.Zap)
	} else {
		r.Post("/zaps", zaps.Zap)
	}
	r.Get("/zaps/outstanding", attempts.Outstanding)
}

// RegisterFundingRoutes wires treasury top-ups behind the admin gate.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler, adminOnly fiber.Handler) {
	r.Post("/admin/topups", adminOnly, h.TopUp)
}
