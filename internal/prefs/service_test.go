package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/printwise/printwise/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	st := store.New(rdb, "printwise_")
	return NewService(st), st
}

func TestThemeDefaultsToLight(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	if got := svc.Theme(ctx); got != ThemeLight {
		t.Errorf("missing preference should read as light, got %s", got)
	}

	// Unrecognized stored values also fall back to light.
	st.Set(ctx, "theme", "sepia")
	if got := svc.Theme(ctx); got != ThemeLight {
		t.Errorf("invalid preference should read as light, got %s", got)
	}
}

func TestSetTheme(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetTheme(ctx, ThemeDark); err != nil {
		t.Fatalf("setting dark failed: %v", err)
	}
	if got := svc.Theme(ctx); got != ThemeDark {
		t.Errorf("expected dark, got %s", got)
	}

	if err := svc.SetTheme(ctx, ThemeLight); err != nil {
		t.Fatalf("setting light failed: %v", err)
	}
	if got := svc.Theme(ctx); got != ThemeLight {
		t.Errorf("expected light, got %s", got)
	}
}

func TestSetThemeRejectsUnknownValues(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.SetTheme(ctx, ThemeDark)
	if err := svc.SetTheme(ctx, "solarized"); err == nil {
		t.Fatal("unknown theme must be rejected")
	}
	if got := svc.Theme(ctx); got != ThemeDark {
		t.Errorf("rejected write must not change the preference, got %s", got)
	}
}
