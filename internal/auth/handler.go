package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/printwise/printwise/internal/apperror"
)

// sessionCookieName is the HTTP cookie carrying the opaque session token.
const sessionCookieName = "printwise_session"

// Handler exposes the auth service over HTTP. Handlers are thin: bind
// the request, call the service, render the result. No business logic
// lives here.
type Handler struct {
	service *Service
}

// NewHandler creates an auth handler over the given service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
}

// ChangePasswordRequest is the password-change payload.
type ChangePasswordRequest struct {
	Current string `json:"current" form:"current"`
	New     string `json:"new" form:"new"`
	Confirm string `json:"confirm" form:"confirm"`
}

// Register handles POST /api/register.
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	res := h.service.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Confirm)
	if !res.OK {
		return c.JSON(http.StatusBadRequest, res)
	}
	return c.JSON(http.StatusCreated, res)
}

// Login handles POST /api/login. On success the session token is set as
// an HTTP-only cookie.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	res := h.service.Login(c.Request().Context(), req.Email, req.Password, req.Remember)
	if !res.OK {
		return c.JSON(http.StatusUnauthorized, res)
	}

	setSessionCookie(c, res.Token, h.service.SessionDuration())
	return c.JSON(http.StatusOK, res)
}

// Logout handles POST /api/logout.
func (h *Handler) Logout(c echo.Context) error {
	res := h.service.Logout(c.Request().Context())
	clearSessionCookie(c)
	if !res.OK {
		return c.JSON(http.StatusBadRequest, res)
	}
	return c.JSON(http.StatusOK, res)
}

// Me handles GET /api/me: the current-session user, or 401.
func (h *Handler) Me(c echo.Context) error {
	u := h.service.CurrentUser(c.Request().Context())
	if u == nil {
		return apperror.NewUnauthorized("no active session")
	}
	return c.JSON(http.StatusOK, u)
}

// Refresh handles POST /api/refresh: explicit activity-based renewal.
func (h *Handler) Refresh(c echo.Context) error {
	refreshed := h.service.RefreshSession(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]bool{"refreshed": refreshed})
}

// ChangePassword handles POST /api/password.
func (h *Handler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	res := h.service.ChangePassword(c.Request().Context(), req.Current, req.New, req.Confirm)
	if !res.OK {
		return c.JSON(http.StatusBadRequest, res)
	}
	return c.JSON(http.StatusOK, res)
}

// --- Cookie helpers ---

func setSessionCookie(c echo.Context, token string, maxAge time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// getSessionToken reads the session token cookie, returning "" when
// absent.
func getSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
