package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/printwise/printwise/internal/store"
)

// Logical store keys owned by the repository. The user list, the
// current-user snapshot, the session token, and the login timestamp are
// written independently -- there is no transaction across them.
const (
	keyUsers        = "users"
	keyCurrentUser  = "current_user"
	keySessionToken = "session_token"
	keyLoginTime    = "login_time"
)

// sessionTokenBytes is the number of random bytes in the opaque session
// token. The token is a presence marker, not a credential, but making it
// unguessable costs nothing.
const sessionTokenBytes = 16

// Repository persists the user set and the current-session keys in the
// key-value store, mirroring both in memory. Construction loads whatever
// the store holds; decode failures are swallowed and treated as empty
// state so a corrupted key can never take the site down.
type Repository struct {
	store *store.Store

	mu      sync.RWMutex
	users   []*User
	current *User
}

// NewRepository creates a repository over the given store and loads the
// persisted user list and current-user snapshot.
func NewRepository(ctx context.Context, st *store.Store) *Repository {
	r := &Repository{store: st}
	r.load(ctx)
	return r
}

// load reads the persisted user list and current-user snapshot. Missing
// or malformed values leave the corresponding state empty.
func (r *Repository) load(ctx context.Context) {
	if raw, ok, err := r.store.Get(ctx, keyUsers); err == nil && ok {
		var users []*User
		if err := json.Unmarshal([]byte(raw), &users); err != nil {
			slog.Warn("user list failed to decode, starting empty", slog.Any("error", err))
		} else {
			r.users = users
		}
	}

	if raw, ok, err := r.store.Get(ctx, keyCurrentUser); err == nil && ok {
		var current User
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			slog.Warn("current-user snapshot failed to decode, ignoring", slog.Any("error", err))
		} else {
			r.current = &current
		}
	}
}

// AddUser appends a user and persists the list. Returns false without
// mutating anything when a user with the same email already exists.
func (r *Repository) AddUser(ctx context.Context, u *User) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return false
		}
	}

	r.users = append(r.users, u)
	r.persistUsers(ctx)
	return true
}

// FindByEmail returns the user with the exact (case-sensitive) email, or
// false when no such user exists.
func (r *Repository) FindByEmail(email string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, true
		}
	}
	return nil, false
}

// Count returns the number of registered users.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// SetCurrentUser records u as the active session: it persists the
// current-user snapshot and mints a fresh opaque session token. The login
// timestamp is stamped separately by the auth service.
func (r *Repository) SetCurrentUser(ctx context.Context, u *User) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = u
	r.persistCurrent(ctx)

	token := mintSessionToken()
	if err := r.store.Set(ctx, keySessionToken, token); err != nil {
		slog.Error("failed to persist session token", slog.Any("error", err))
	}
	return token
}

// CurrentUser returns the active-session user, or nil. Expiry is not
// consulted here; that is the auth service's concern.
func (r *Repository) CurrentUser() *User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// IsUserLoggedIn reports whether a current-user pointer is set,
// independent of session expiry.
func (r *Repository) IsUserLoggedIn() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current != nil
}

// ClearCurrentUser drops the active session and removes all three session
// keys: snapshot, token, and login timestamp.
func (r *Repository) ClearCurrentUser(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = nil
	for _, key := range []string{keyCurrentUser, keySessionToken, keyLoginTime} {
		if err := r.store.Delete(ctx, key); err != nil {
			slog.Error("failed to clear session key",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}
}

// SessionToken returns the persisted opaque session token, if any.
func (r *Repository) SessionToken(ctx context.Context) (string, bool) {
	token, ok, err := r.store.Get(ctx, keySessionToken)
	if err != nil {
		slog.Error("failed to read session token", slog.Any("error", err))
		return "", false
	}
	return token, ok
}

// SetLoginTime persists the login timestamp as a decimal string of
// milliseconds since the epoch.
func (r *Repository) SetLoginTime(ctx context.Context, t time.Time) {
	if err := r.store.Set(ctx, keyLoginTime, strconv.FormatInt(t.UnixMilli(), 10)); err != nil {
		slog.Error("failed to persist login time", slog.Any("error", err))
	}
}

// LoginTime returns the persisted login timestamp. A missing or malformed
// value reads as absent.
func (r *Repository) LoginTime(ctx context.Context) (time.Time, bool) {
	raw, ok, err := r.store.Get(ctx, keyLoginTime)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("login time failed to parse, ignoring", slog.String("value", raw))
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// UpdateUser applies name and/or password changes to the user with the
// given email and re-persists the list. An empty field means "leave
// unchanged"; Password must already be hashed. When the updated user is
// the current user, the session snapshot is re-persisted too. Returns
// false when no such user exists.
func (r *Repository) UpdateUser(ctx context.Context, email, name, passwordHash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email != email {
			continue
		}
		if name != "" {
			u.Name = name
		}
		if passwordHash != "" {
			u.Password = passwordHash
		}
		r.persistUsers(ctx)

		if r.current != nil && r.current.Email == email {
			r.current = u
			r.persistCurrent(ctx)
		}
		return true
	}
	return false
}

// DeleteUser removes the user with the given email and re-persists the
// list. When the deleted identity is the current user, the session is
// cleared as well rather than leaving a dangling pointer.
func (r *Repository) DeleteUser(ctx context.Context, email string) bool {
	r.mu.Lock()

	idx := -1
	for i, u := range r.users {
		if u.Email == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return false
	}

	r.users = append(r.users[:idx], r.users[idx+1:]...)
	r.persistUsers(ctx)

	wasCurrent := r.current != nil && r.current.Email == email
	r.mu.Unlock()

	if wasCurrent {
		r.ClearCurrentUser(ctx)
	}
	return true
}

// ExportData returns a snapshot copy of the full user set for backup
// purposes.
func (r *Repository) ExportData() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out
}

// ImportData replaces the user set wholesale from a serialized snapshot.
// Malformed input (undecodable JSON, or entries without an email) leaves
// the existing state untouched and returns false.
func (r *Repository) ImportData(ctx context.Context, raw []byte) bool {
	var users []*User
	if err := json.Unmarshal(raw, &users); err != nil {
		slog.Warn("user import rejected, invalid snapshot", slog.Any("error", err))
		return false
	}
	for _, u := range users {
		if u == nil || u.Email == "" {
			slog.Warn("user import rejected, entry missing email")
			return false
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = users
	r.persistUsers(ctx)
	return true
}

// persistUsers writes the in-memory user list back to the store. Callers
// hold the lock. A failed write is logged, not retried; memory remains
// the source of truth for this process.
func (r *Repository) persistUsers(ctx context.Context) {
	data, err := json.Marshal(r.users)
	if err != nil {
		slog.Error("failed to encode user list", slog.Any("error", err))
		return
	}
	if err := r.store.Set(ctx, keyUsers, string(data)); err != nil {
		slog.Error("failed to persist user list", slog.Any("error", err))
	}
}

// persistCurrent writes the current-user snapshot (or removes it when no
// session is active). Callers hold the lock.
func (r *Repository) persistCurrent(ctx context.Context) {
	if r.current == nil {
		if err := r.store.Delete(ctx, keyCurrentUser); err != nil {
			slog.Error("failed to remove current-user snapshot", slog.Any("error", err))
		}
		return
	}

	data, err := json.Marshal(r.current)
	if err != nil {
		slog.Error("failed to encode current-user snapshot", slog.Any("error", err))
		return
	}
	if err := r.store.Set(ctx, keyCurrentUser, string(data)); err != nil {
		slog.Error("failed to persist current-user snapshot", slog.Any("error", err))
	}
}

// mintSessionToken produces the opaque session token: a millisecond
// timestamp joined to random hex. Presence-only semantics; nothing ever
// decodes it.
func mintSessionToken() string {
	b := make([]byte, sessionTokenBytes)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%d.%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
