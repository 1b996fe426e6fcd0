package bot

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler receives chat activities over HTTP.
type Handler struct {
	bot *Bot
}

// NewHandler constructs a bot handler.
func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

// Messages handles an inbound activity and answers with a message activity.
func (h *Handler) Messages(c *fiber.Ctx) error {
	var act Activity
	if err := c.BodyParser(&act); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	reply := h.bot.Handle(c.UserContext(), act)
	if reply == "" {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"type": "message",
		"text": reply,
	})
}
