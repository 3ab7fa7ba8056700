package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/printwise/printwise/internal/apperror"
)

// contextKeyUserEmail is where the middleware stores the authenticated
// user's email for downstream handlers.
const contextKeyUserEmail = "auth_user_email"

// ActivitySink receives a signal for each authenticated request. The
// session manager uses it as its user-interaction feed.
type ActivitySink func(c echo.Context)

// RequireSession returns middleware that validates the session-token
// cookie against the stored token and the expiry-aware login check. Each
// authenticated request is also reported to the activity sink.
func RequireSession(service *Service, activity ActivitySink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := getSessionToken(c)
			if token == "" || !service.ValidateToken(c.Request().Context(), token) {
				clearSessionCookie(c)
				return apperror.NewUnauthorized("authentication required")
			}

			if u := service.CurrentUser(c.Request().Context()); u != nil {
				c.Set(contextKeyUserEmail, u.Email)
			}

			if activity != nil {
				activity(c)
			}

			return next(c)
		}
	}
}

// UserEmail returns the authenticated user's email from the Echo context,
// or "" when the request is anonymous.
func UserEmail(c echo.Context) string {
	email, _ := c.Get(contextKeyUserEmail).(string)
	return email
}

// ResolveEmail returns a resolver mapping a request to the authenticated
// user's email via the session cookie, or "" for anonymous visitors. Used
// by the page-access log, which runs outside the session middleware.
func ResolveEmail(service *Service) func(c echo.Context) string {
	return func(c echo.Context) string {
		token := getSessionToken(c)
		if token == "" || !service.ValidateToken(c.Request().Context(), token) {
			return ""
		}
		if u := service.CurrentUser(c.Request().Context()); u != nil {
			return u.Email
		}
		return ""
	}
}
