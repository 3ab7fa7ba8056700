// Package app is the application bootstrap and dependency injection root.
// It creates and holds the shared infrastructure (Redis client, key-value
// store, Echo instance) and wires the services together. Nothing here is
// a singleton; every component receives its dependencies explicitly.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/printwise/printwise/internal/apperror"
	"github.com/printwise/printwise/internal/auth"
	"github.com/printwise/printwise/internal/config"
	"github.com/printwise/printwise/internal/contact"
	"github.com/printwise/printwise/internal/middleware"
	"github.com/printwise/printwise/internal/pagelog"
	"github.com/printwise/printwise/internal/prefs"
	"github.com/printwise/printwise/internal/session"
	"github.com/printwise/printwise/internal/store"
	"github.com/printwise/printwise/internal/user"
)

// App holds all shared dependencies and the Echo HTTP server instance.
type App struct {
	Config *config.Config
	Redis  *redis.Client
	Echo   *echo.Echo

	Store    *store.Store
	Users    *user.Repository
	Auth     *auth.Service
	Sessions *session.Manager
	Prefs    *prefs.Service
	Contact  *contact.Service
	PageLog  *pagelog.Service
}

// New creates the application: the prefix-scoped store over Redis, the
// repositories and services on top of it, and the configured Echo server.
func New(ctx context.Context, cfg *config.Config, rdb *redis.Client) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	st := store.New(rdb, cfg.Store.Prefix)
	users := user.NewRepository(ctx, st)
	authSvc := auth.NewService(users, st, cfg.Session.Duration)

	a := &App{
		Config: cfg,
		Redis:  rdb,
		Echo:   e,

		Store: st,
		Users: users,
		Auth:  authSvc,
		Sessions: session.NewManager(authSvc, st, session.Config{
			ActivityCooldown: cfg.Session.ActivityCooldown,
			PollInterval:     cfg.Session.PollInterval,
			WarnThreshold:    cfg.Session.WarnThreshold,
		}),
		Prefs:   prefs.NewService(st),
		Contact: contact.NewService(st),
		PageLog: pagelog.NewService(st),
	}

	a.setupMiddleware()
	e.HTTPErrorHandler = a.errorHandler

	return a
}

// setupMiddleware registers global middleware in execution order:
// recovery outermost, then request logging, security headers, and the
// page-access log.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())
	a.Echo.Use(pagelog.Middleware(a.PageLog, auth.ResolveEmail(a.Auth)))
}

// Start begins serving HTTP on the configured port.
func (a *App) Start() error {
	return a.Echo.Start(fmt.Sprintf(":%d", a.Config.Port))
}

// errorHandler maps domain errors (AppError) to JSON responses. Internal
// causes are logged, never exposed.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "an unexpected error occurred"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if writeErr := c.JSON(code, map[string]string{"error": message}); writeErr != nil {
		slog.Error("failed to write error response", slog.Any("error", writeErr))
	}
}
