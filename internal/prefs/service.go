// Package prefs manages the site theme preference. The theming layer is
// the only consumer of this key; it is independent of the session core.
package prefs

import (
	"context"
	"log/slog"

	"github.com/printwise/printwise/internal/apperror"
	"github.com/printwise/printwise/internal/store"
)

// keyTheme holds the persisted theme preference.
const keyTheme = "theme"

// Accepted theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Service reads and writes the theme preference.
type Service struct {
	store *store.Store
}

// NewService creates a prefs service over the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Theme returns the persisted theme. Missing, unreadable, or unrecognized
// values fall back to light.
func (s *Service) Theme(ctx context.Context) string {
	val, ok, err := s.store.Get(ctx, keyTheme)
	if err != nil {
		slog.Warn("failed to read theme preference", slog.Any("error", err))
		return ThemeLight
	}
	if !ok || (val != ThemeLight && val != ThemeDark) {
		return ThemeLight
	}
	return val
}

// SetTheme persists the theme preference. Only "light" and "dark" are
// accepted.
func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return apperror.NewBadRequest("theme must be \"light\" or \"dark\"")
	}
	if err := s.store.Set(ctx, keyTheme, theme); err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}
