package prefs

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printwise/printwise/internal/apperror"
)

// Handler exposes the theme preference over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a prefs handler over the given service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// themeRequest is the PUT /api/theme payload.
type themeRequest struct {
	Theme string `json:"theme" form:"theme"`
}

// GetTheme handles GET /api/theme.
func (h *Handler) GetTheme(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"theme": h.service.Theme(c.Request().Context()),
	})
}

// SetTheme handles PUT /api/theme.
func (h *Handler) SetTheme(c echo.Context) error {
	var req themeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	if err := h.service.SetTheme(c.Request().Context(), req.Theme); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"theme": req.Theme})
}
