package contact

import (
	"context"
	"fmt"
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

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name              string
		from, email, body string
	}{
		{"empty name", "", "a@x.com", "hello"},
		{"empty body", "Alice", "a@x.com", ""},
		{"bad email", "Alice", "not-an-email", "hello"},
	}
	for _, tc := range cases {
		if _, err := svc.Submit(ctx, tc.from, tc.email, tc.body); err == nil {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}

	if len(svc.History(ctx)) != 0 {
		t.Error("rejected submissions must not be stored")
	}
}

func TestSubmitAndHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Submit(ctx, "Alice", "a@x.com", "which paper sizes do you support?")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if msg.ID == "" {
		t.Error("expected assigned message ID")
	}

	svc.Submit(ctx, "Bob", "b@x.com", "second message")

	history := svc.History(ctx)
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	// Oldest first.
	if history[0].Name != "Alice" || history[1].Name != "Bob" {
		t.Errorf("unexpected order: %s, %s", history[0].Name, history[1].Name)
	}
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < maxMessages+3; i++ {
		if _, err := svc.Submit(ctx, fmt.Sprintf("User %d", i), "u@x.com", "hi"); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}

	history := svc.History(ctx)
	if len(history) != maxMessages {
		t.Fatalf("expected history capped at %d, got %d", maxMessages, len(history))
	}
	if history[0].Name != "User 3" {
		t.Errorf("expected the 3 oldest evicted, first is %s", history[0].Name)
	}
	if history[len(history)-1].Name != fmt.Sprintf("User %d", maxMessages+2) {
		t.Errorf("newest entry missing, last is %s", history[len(history)-1].Name)
	}
}

func TestHistorySwallowsCorruptedData(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	st.Set(ctx, "contact_messages", "{bad json")

	if len(svc.History(ctx)) != 0 {
		t.Error("corrupted history must read as empty")
	}

	// A fresh submission starts the list over.
	if _, err := svc.Submit(ctx, "Alice", "a@x.com", "hello"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(svc.History(ctx)) != 1 {
		t.Error("expected history rebuilt after corruption")
	}
}
