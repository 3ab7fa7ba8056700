// Package session runs the two periodic concerns around the auth
// service: renewing the session when the user is active, and polling for
// approaching expiry so the user gets one warning before being signed
// out. The browser original listened for DOM interaction events; here the
// activity signal is each authenticated HTTP request, fed in by the
// request middleware.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/printwise/printwise/internal/auth"
)

// Defaults for the manager's timing knobs. All are overridable through
// Config for tests and deployment tuning.
const (
	DefaultActivityCooldown = time.Minute
	DefaultPollInterval     = 5 * time.Minute
	DefaultWarnThreshold    = 10 * time.Minute
)

// EventType classifies a manager notice.
type EventType string

const (
	// EventExpiryWarning is emitted once per approach-to-expiry when the
	// remaining session time drops below the warning threshold.
	EventExpiryWarning EventType = "expiry_warning"

	// EventSessionEnded is emitted when the poller finds the session
	// expired and forces a logout.
	EventSessionEnded EventType = "session_ended"
)

// Event is a user-facing notice produced by the expiry poller.
type Event struct {
	Type    EventType
	Message string
}

// Notifier receives manager notices. The default logs them; the HTTP
// facade or tests may install their own.
type Notifier func(Event)

// AuthService is the slice of the auth service the manager drives.
type AuthService interface {
	IsLoggedIn(ctx context.Context) bool
	RefreshSession(ctx context.Context) bool
	Logout(ctx context.Context) *auth.Result
	SessionRemaining(ctx context.Context) (time.Duration, bool)
}

// Availability is the store probe consulted before starting the
// background poller.
type Availability interface {
	Available(ctx context.Context) bool
}

// Config carries the manager's timing knobs and notifier. Zero values
// take the package defaults.
type Config struct {
	ActivityCooldown time.Duration
	PollInterval     time.Duration
	WarnThreshold    time.Duration
	Notify           Notifier
}

// Manager owns the activity throttle and the expiry poller.
type Manager struct {
	auth  AuthService
	store Availability

	cooldown      time.Duration
	pollInterval  time.Duration
	warnThreshold time.Duration
	notify        Notifier

	mu           sync.Mutex
	lastActivity time.Time
	warned       bool
}

// NewManager creates a session manager over the given auth service and
// store probe.
func NewManager(auth AuthService, st Availability, cfg Config) *Manager {
	if cfg.ActivityCooldown <= 0 {
		cfg.ActivityCooldown = DefaultActivityCooldown
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.WarnThreshold <= 0 {
		cfg.WarnThreshold = DefaultWarnThreshold
	}
	if cfg.Notify == nil {
		cfg.Notify = func(ev Event) {
			slog.Warn("session notice",
				slog.String("type", string(ev.Type)),
				slog.String("message", ev.Message),
			)
		}
	}

	return &Manager{
		auth:          auth,
		store:         st,
		cooldown:      cfg.ActivityCooldown,
		pollInterval:  cfg.PollInterval,
		warnThreshold: cfg.WarnThreshold,
		notify:        cfg.Notify,
	}
}

// Start launches the expiry poller. It is a no-op when the store is
// unavailable (nothing to renew or expire against). The poller runs until
// ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	if !m.store.Available(ctx) {
		slog.Warn("session manager not started, store unavailable")
		return
	}

	go func() {
		ticker := time.NewTicker(m.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkExpiry(ctx)
			}
		}
	}()

	slog.Info("session manager started",
		slog.Duration("poll_interval", m.pollInterval),
		slog.Duration("activity_cooldown", m.cooldown),
	)
}

// Activity records a user-interaction signal. At most once per cooldown
// window it renews the session and resets the expiry-warning flag; bursts
// inside the window collapse into a single renewal. Returns true when a
// renewal actually happened.
func (m *Manager) Activity(ctx context.Context) bool {
	m.mu.Lock()
	if !m.lastActivity.IsZero() && time.Since(m.lastActivity) < m.cooldown {
		m.mu.Unlock()
		return false
	}
	m.lastActivity = time.Now()
	m.mu.Unlock()

	if !m.auth.IsLoggedIn(ctx) {
		return false
	}

	refreshed := m.auth.RefreshSession(ctx)
	if refreshed {
		m.mu.Lock()
		m.warned = false
		m.mu.Unlock()
	}
	return refreshed
}

// checkExpiry is one poller tick: warn once when the session is close to
// expiry, and force a logout with a notice once it has run out.
func (m *Manager) checkExpiry(ctx context.Context) {
	remaining, ok := m.auth.SessionRemaining(ctx)
	if !ok {
		return
	}

	if remaining <= 0 {
		if res := m.auth.Logout(ctx); !res.OK {
			return
		}
		m.mu.Lock()
		m.warned = false
		m.mu.Unlock()
		m.notify(Event{
			Type:    EventSessionEnded,
			Message: "your session has expired, please sign in again",
		})
		return
	}

	if remaining < m.warnThreshold {
		m.mu.Lock()
		alreadyWarned := m.warned
		m.warned = true
		m.mu.Unlock()
		if !alreadyWarned {
			minutes := int(remaining.Round(time.Minute) / time.Minute)
			m.notify(Event{
				Type:    EventExpiryWarning,
				Message: fmt.Sprintf("your session expires in about %d minutes", minutes),
			})
		}
	}
}
