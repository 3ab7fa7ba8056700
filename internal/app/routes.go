package app

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/printwise/printwise/internal/auth"
	"github.com/printwise/printwise/internal/contact"
	"github.com/printwise/printwise/internal/middleware"
	"github.com/printwise/printwise/internal/pagelog"
	"github.com/printwise/printwise/internal/prefs"
	"github.com/printwise/printwise/internal/store"
)

// RegisterRoutes sets up all application routes: the public auth and
// contact endpoints, and the session-guarded account and maintenance
// endpoints. This is the single place where routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check for container monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := auth.NewHandler(a.Auth)
	prefsHandler := prefs.NewHandler(a.Prefs)
	contactHandler := contact.NewHandler(a.Contact)
	pagelogHandler := pagelog.NewHandler(a.PageLog)
	storeHandler := store.NewHandler(a.Store)

	// --- Public routes ---
	// Credential endpoints are rate limited against brute forcing.
	e.POST("/api/register", authHandler.Register, middleware.RateLimit(5, time.Minute))
	e.POST("/api/login", authHandler.Login, middleware.RateLimit(10, time.Minute))
	e.POST("/api/logout", authHandler.Logout)
	e.GET("/api/me", authHandler.Me)

	e.GET("/api/theme", prefsHandler.GetTheme)
	e.PUT("/api/theme", prefsHandler.SetTheme)

	e.POST("/api/contact", contactHandler.Submit, middleware.RateLimit(5, time.Minute))

	// --- Session-guarded routes ---
	// Every request through this group counts as user activity and feeds
	// the session manager's renewal throttle.
	requireSession := auth.RequireSession(a.Auth, func(c echo.Context) {
		a.Sessions.Activity(c.Request().Context())
	})

	authed := e.Group("/api", requireSession)
	authed.POST("/refresh", authHandler.Refresh)
	authed.POST("/password", authHandler.ChangePassword)
	authed.GET("/contact", contactHandler.History)
	authed.GET("/pagelog", pagelogHandler.List)

	storage := e.Group("/api/storage", requireSession)
	storage.GET("", storeHandler.Status)
	storage.GET("/backup", storeHandler.Backup)
	storage.POST("/restore", storeHandler.Restore)
	storage.POST("/integrity", storeHandler.Integrity)
	storage.POST("/cleanup", storeHandler.Cleanup)
	storage.DELETE("", storeHandler.Clear)
}
