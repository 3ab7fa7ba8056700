package contact

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printwise/printwise/internal/apperror"
)

// Handler exposes the contact form over HTTP. Submitting is public;
// reading the history sits behind the session middleware.
type Handler struct {
	service *Service
}

// NewHandler creates a contact handler over the given service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// submitRequest is the POST /api/contact payload.
type submitRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Submit handles POST /api/contact.
func (h *Handler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	msg, err := h.service.Submit(c.Request().Context(), req.Name, req.Email, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// History handles GET /api/contact.
func (h *Handler) History(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.History(c.Request().Context()))
}
