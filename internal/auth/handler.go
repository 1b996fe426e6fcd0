package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const devTokenTTL = 12 * time.Hour

// Handler issues tokens for local development, where no identity provider
// sits in front of the tab.
type Handler struct {
	verifier *Verifier
}

func NewHandler(verifier *Verifier) *Handler {
	return &Handler{verifier: verifier}
}

type devTokenRequest struct {
	ObjectID string `json:"oid"`
	Name     string `json:"name"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// DevToken signs a token for the posted identity.
func (h *Handler) DevToken(c *fiber.Ctx) error {
	var req devTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	req.ObjectID = strings.TrimSpace(req.ObjectID)
	if req.ObjectID == "" {
		return fiber.NewError(http.StatusBadRequest, "oid is required")
	}
	token, err := h.verifier.Issue(req.ObjectID, req.Name, devTokenTTL)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(tokenResponse{AccessToken: token, ExpiresIn: int64(devTokenTTL.Seconds())})
}
