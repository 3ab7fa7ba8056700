package pagelog

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Handler exposes the page-access log over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a pagelog handler over the given service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/pagelog.
func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Entries(c.Request().Context()))
}

// EmailResolver maps a request to the email of the user making it, or ""
// for anonymous visitors.
type EmailResolver func(c echo.Context) string

// Middleware returns Echo middleware that records GET page accesses.
// Maintenance and log endpoints are skipped so reading the log does not
// write to it. Recording never fails the request.
func Middleware(service *Service, resolveEmail EmailResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodGet && recordable(req.URL.Path) {
				var email string
				if resolveEmail != nil {
					email = resolveEmail(c)
				}
				service.Record(req.Context(), req.URL.Path, email)
			}
			return next(c)
		}
	}
}

// recordable filters out endpoints whose reads should not feed the log.
func recordable(path string) bool {
	if path == "/healthz" || path == "/api/pagelog" {
		return false
	}
	return !strings.HasPrefix(path, "/api/storage")
}
