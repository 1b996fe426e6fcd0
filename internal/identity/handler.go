package identity

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes directory endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type userResponse struct {
	ID          string `json:"id"`
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

// List returns the directory, optionally narrowed by ?external_id=.
func (h *Handler) List(c *fiber.Ctx) error {
	var (
		users []User
		err   error
	)
	if ext := c.Query("external_id"); ext != "" {
		var user User
		var ok bool
		user, ok, err = h.service.Lookup(c.UserContext(), ext)
		if ok {
			users = []User{user}
		}
	} else {
		users, err = h.service.All(c.UserContext())
	}
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, ExternalID: u.ExternalID, DisplayName: u.DisplayName})
	}
	return c.Status(http.StatusOK).JSON(out)
}
