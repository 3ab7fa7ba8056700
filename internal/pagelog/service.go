// Package pagelog records page accesses into a capped JSON list in the
// store. Recording is fire-and-forget: a logging failure never blocks the
// request that triggered it.
package pagelog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printwise/printwise/internal/store"
)

// keyLog is the store key holding the serialized access log.
const keyLog = "page_log"

// maxEntries caps the log; older entries are evicted first.
const maxEntries = 100

// Entry is one recorded page access. UserEmail is empty for anonymous
// visits.
type Entry struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	UserEmail string    `json:"user_email,omitempty"`
	At        time.Time `json:"at"`
}

// Service appends to and reads the page-access log.
type Service struct {
	store *store.Store

	// mu serializes the read-modify-write of the list within this process.
	mu sync.Mutex
}

// NewService creates a pagelog service over the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Record appends a page access, evicting the oldest entry once the log is
// full. Errors are logged and swallowed.
func (s *Service) Record(ctx context.Context, path, userEmail string) {
	entry := Entry{
		ID:        uuid.NewString(),
		Path:      path,
		UserEmail: userEmail,
		At:        time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked(ctx)
	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		slog.Warn("failed to encode page log", slog.Any("error", err))
		return
	}
	if err := s.store.Set(ctx, keyLog, string(data)); err != nil {
		slog.Warn("failed to persist page log", slog.Any("error", err))
	}
}

// Entries returns the recorded accesses, oldest first.
func (s *Service) Entries(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// loadLocked reads the log; missing or malformed data reads as empty.
// Callers hold the lock.
func (s *Service) loadLocked(ctx context.Context) []Entry {
	raw, ok, err := s.store.Get(ctx, keyLog)
	if err != nil || !ok {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Warn("page log failed to decode, starting empty", slog.Any("error", err))
		return nil
	}
	return entries
}
