package store

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printwise/printwise/internal/apperror"
)

// Handler exposes the maintenance utilities over HTTP. All routes sit
// behind the session middleware; the site front end only ever reaches the
// store through these endpoints.
type Handler struct {
	store *Store
}

// NewHandler creates a maintenance handler over the given store.
func NewHandler(st *Store) *Handler {
	return &Handler{store: st}
}

// Status handles GET /api/storage: availability plus the usage report.
func (h *Handler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	available := h.store.Available(ctx)
	if !available {
		return c.JSON(http.StatusOK, map[string]any{"available": false})
	}

	usage, err := h.store.UsageInfo(ctx)
	if err != nil {
		return apperror.NewInternal(err)
	}
	keys, err := h.store.Keys(ctx)
	if err != nil {
		return apperror.NewInternal(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"available": true,
		"usage":     usage,
		"keys":      keys,
	})
}

// Backup handles GET /api/storage/backup: the full snapshot document.
func (h *Handler) Backup(c echo.Context) error {
	doc, err := h.store.Backup(c.Request().Context())
	if err != nil {
		return apperror.NewInternal(err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Restore handles POST /api/storage/restore.
func (h *Handler) Restore(c echo.Context) error {
	var doc BackupDocument
	if err := c.Bind(&doc); err != nil {
		return apperror.NewBadRequest("invalid backup document")
	}

	report, err := h.store.Restore(c.Request().Context(), &doc)
	if err != nil {
		return apperror.NewBadRequest(err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

// Integrity handles POST /api/storage/integrity.
func (h *Handler) Integrity(c echo.Context) error {
	report, err := h.store.IntegrityCheck(c.Request().Context())
	if err != nil {
		return apperror.NewInternal(err)
	}
	return c.JSON(http.StatusOK, report)
}

// Cleanup handles POST /api/storage/cleanup: remove corrupted keys.
func (h *Handler) Cleanup(c echo.Context) error {
	removed, err := h.store.Cleanup(c.Request().Context())
	if err != nil {
		return apperror.NewInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}

// Clear handles DELETE /api/storage: remove every application key.
func (h *Handler) Clear(c echo.Context) error {
	removed, err := h.store.Clear(c.Request().Context())
	if err != nil {
		return apperror.NewInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}
