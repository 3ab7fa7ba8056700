package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestStore spins up an in-memory Redis and returns a store over it.
func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, "printwise_"), mr
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	if _, ok, err := st.Get(ctx, "theme"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := st.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok, err := st.Get(ctx, "theme")
	if err != nil || !ok {
		t.Fatalf("expected present key, got ok=%v err=%v", ok, err)
	}
	if val != "dark" {
		t.Errorf("expected dark, got %q", val)
	}

	if err := st.Delete(ctx, "theme"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "theme"); ok {
		t.Error("expected key gone after delete")
	}

	// Deleting an absent key is not an error.
	if err := st.Delete(ctx, "theme"); err != nil {
		t.Errorf("deleting absent key: %v", err)
	}
}

func TestKeysArePrefixed(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)

	if err := st.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := mr.Get("printwise_theme")
	if err != nil {
		t.Fatalf("prefixed key not written: %v", err)
	}
	if got != "dark" {
		t.Errorf("expected dark, got %q", got)
	}
}

func TestKeysEnumeratesOnlyPrefixed(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)

	// Foreign keys in the shared store must not appear.
	mr.Set("other_app_data", "x")
	mr.Set("session:abc", "y")

	st.Set(ctx, "users", "[]")
	st.Set(ctx, "theme", "light")

	keys, err := st.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
	// Sorted, unprefixed logical names.
	if keys[0] != "theme" || keys[1] != "users" {
		t.Errorf("unexpected key set: %v", keys)
	}
}

func TestAvailable(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)

	if !st.Available(ctx) {
		t.Error("expected store to be available")
	}
	// The probe must not leave its key behind.
	if mr.Exists("printwise_" + probeKey) {
		t.Error("probe key left behind")
	}

	mr.Close()
	if st.Available(ctx) {
		t.Error("expected store to be unavailable after close")
	}
}
