// Package auth orchestrates the Printwise session lifecycle on top of the
// user repository: registration, login/logout, expiry detection, and
// activity-based renewal.
//
// Public operations never panic and never surface storage errors. Each
// returns a Result carrying a success flag, a user-facing message, and
// (for validation) the list of individual violations. Storage failures
// are logged and degrade to the logged-out defaults.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/printwise/printwise/internal/store"
	"github.com/printwise/printwise/internal/user"
)

// DefaultSessionDuration is how long a session lives without renewal.
const DefaultSessionDuration = 24 * time.Hour

// keyRememberMe is the presence-only marker set when the user asks to be
// remembered on the login form.
const keyRememberMe = "remember_me"

// msgBadCredentials is returned for both an unknown email and a wrong
// password, so login responses never reveal which emails are registered.
const msgBadCredentials = "incorrect email or password"

// Result is the outcome of an auth operation: a success flag, a message
// safe to show the user, and any individual validation violations.
type Result struct {
	OK      bool     `json:"ok"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func failure(message string, errs ...string) *Result {
	return &Result{OK: false, Message: message, Errors: errs}
}

func success(message string) *Result {
	return &Result{OK: true, Message: message}
}

// LoginResult extends Result with the authenticated user and the minted
// session token (for the facade to set as a cookie).
type LoginResult struct {
	Result
	User  *user.User `json:"user,omitempty"`
	Token string     `json:"-"`
}

// Service implements the logged-out -> logged-in -> (expired) ->
// logged-out state machine. The remember-me marker is written straight to
// the store; everything session-shaped goes through the repository.
type Service struct {
	repo     *user.Repository
	store    *store.Store
	duration time.Duration
}

// NewService creates an auth service. A non-positive duration falls back
// to DefaultSessionDuration.
func NewService(repo *user.Repository, st *store.Store, duration time.Duration) *Service {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &Service{repo: repo, store: st, duration: duration}
}

// SessionDuration returns the configured session lifetime.
func (s *Service) SessionDuration() time.Duration {
	return s.duration
}

// Register creates a new account. The password/confirmation mismatch is
// checked before any validation runs; validation violations are
// aggregated; a duplicate email fails without mutation. Success does not
// log the new user in.
func (s *Service) Register(ctx context.Context, name, email, password, confirm string) *Result {
	if password != confirm {
		return failure("passwords do not match")
	}

	if v := user.Validate(name, email, password); !v.OK {
		return failure("registration failed", v.Errors...)
	}

	u, err := user.New(name, email, password)
	if err != nil {
		slog.Error("registration failed to hash password", slog.Any("error", err))
		return failure("registration is temporarily unavailable")
	}

	if !s.repo.AddUser(ctx, u) {
		return failure("an account with this email already exists")
	}

	slog.Info("user registered", slog.String("email", u.Email))
	return success("registration successful, you can now sign in")
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the identical generic failure. On success the current
// user is set, the login time is stamped, and the remember-me marker is
// set or cleared per the caller's choice.
func (s *Service) Login(ctx context.Context, email, password string, remember bool) *LoginResult {
	u, found := s.repo.FindByEmail(email)
	if !found || !u.CheckPassword(password) {
		return &LoginResult{Result: *failure(msgBadCredentials)}
	}

	token := s.repo.SetCurrentUser(ctx, u)
	s.repo.SetLoginTime(ctx, time.Now())
	s.setRememberMe(ctx, remember)

	slog.Info("user logged in", slog.String("email", u.Email))
	return &LoginResult{
		Result: *success(fmt.Sprintf("welcome back, %s!", u.Name)),
		User:   u,
		Token:  token,
	}
}

// Logout ends the active session, clearing the current-user snapshot, the
// session token, and the login time. Fails when no session is active.
func (s *Service) Logout(ctx context.Context) *Result {
	if !s.repo.IsUserLoggedIn() {
		return failure("no active session")
	}

	s.repo.ClearCurrentUser(ctx)
	slog.Info("user logged out")
	return success("you have been signed out")
}

// IsSessionExpired reports whether the persisted login time is older than
// the session duration. A missing login time is never expired: sessions
// that predate the expiry feature are not force-ended.
func (s *Service) IsSessionExpired(ctx context.Context) bool {
	loginTime, ok := s.repo.LoginTime(ctx)
	if !ok {
		return false
	}
	return time.Since(loginTime) > s.duration
}

// CurrentUser returns the active-session user. This is a check-and-mutate
// read: an expired session is forcibly logged out first, and nil is
// returned.
func (s *Service) CurrentUser(ctx context.Context) *user.User {
	if s.expireIfNeeded(ctx) {
		return nil
	}
	return s.repo.CurrentUser()
}

// IsLoggedIn reports whether an unexpired session is active. Like
// CurrentUser, an expired session is forcibly logged out as a side
// effect.
func (s *Service) IsLoggedIn(ctx context.Context) bool {
	if s.expireIfNeeded(ctx) {
		return false
	}
	return s.repo.IsUserLoggedIn()
}

// RefreshSession re-stamps the login time to now when a session is
// active, renewing it. Returns false (and does nothing) when logged out.
func (s *Service) RefreshSession(ctx context.Context) bool {
	if !s.IsLoggedIn(ctx) {
		return false
	}
	s.repo.SetLoginTime(ctx, time.Now())
	return true
}

// SessionRemaining returns the time left before the active session
// expires. ok is false when no session is active or no login time is
// recorded. The remaining value may be negative for an already-expired
// session; callers decide how to react.
func (s *Service) SessionRemaining(ctx context.Context) (time.Duration, bool) {
	if !s.repo.IsUserLoggedIn() {
		return 0, false
	}
	loginTime, ok := s.repo.LoginTime(ctx)
	if !ok {
		return 0, false
	}
	return s.duration - time.Since(loginTime), true
}

// ValidateToken checks a presented session token against the stored one
// and confirms the session is still live. Used by the request middleware.
func (s *Service) ValidateToken(ctx context.Context, token string) bool {
	stored, ok := s.repo.SessionToken(ctx)
	if !ok || token == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return false
	}
	return s.IsLoggedIn(ctx)
}

// ChangePassword updates the current user's password after verifying the
// existing one. Requires an active session.
func (s *Service) ChangePassword(ctx context.Context, current, newPassword, confirm string) *Result {
	u := s.CurrentUser(ctx)
	if u == nil {
		return failure("no active session")
	}

	if !u.CheckPassword(current) {
		return failure("current password is incorrect")
	}
	if newPassword != confirm {
		return failure("new passwords do not match")
	}
	if len(newPassword) < user.MinPasswordLength {
		return failure(fmt.Sprintf("password must be at least %d characters", user.MinPasswordLength))
	}

	hash, err := user.HashPassword(newPassword)
	if err != nil {
		slog.Error("password change failed to hash", slog.Any("error", err))
		return failure("password change is temporarily unavailable")
	}

	if !s.repo.UpdateUser(ctx, u.Email, "", hash) {
		return failure("password change failed")
	}

	slog.Info("password changed", slog.String("email", u.Email))
	return success("password updated")
}

// expireIfNeeded force-logs-out an expired session. Returns true when an
// expiry logout happened.
func (s *Service) expireIfNeeded(ctx context.Context) bool {
	if !s.repo.IsUserLoggedIn() || !s.IsSessionExpired(ctx) {
		return false
	}
	slog.Info("session expired, forcing logout")
	s.repo.ClearCurrentUser(ctx)
	return true
}

// setRememberMe writes or removes the presence-only remember-me marker.
func (s *Service) setRememberMe(ctx context.Context, remember bool) {
	var err error
	if remember {
		err = s.store.Set(ctx, keyRememberMe, "1")
	} else {
		err = s.store.Delete(ctx, keyRememberMe)
	}
	if err != nil {
		slog.Warn("failed to update remember-me marker", slog.Any("error", err))
	}
}
