// Package contact keeps the history of messages submitted through the
// site's contact form. Messages live as a single JSON list in the store,
// capped at a fixed size with the oldest evicted first.
package contact

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printwise/printwise/internal/apperror"
	"github.com/printwise/printwise/internal/store"
	"github.com/printwise/printwise/internal/user"
)

// keyMessages is the store key holding the serialized message list.
const keyMessages = "contact_messages"

// maxMessages caps the history; submitting past the cap evicts the
// oldest entry.
const maxMessages = 50

// Message is one submitted contact-form entry.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Service validates and stores contact messages.
type Service struct {
	store *store.Store

	// mu serializes the read-modify-write of the message list within this
	// process. Two processes sharing the store can still race; the
	// original had the same gap across browser tabs.
	mu sync.Mutex
}

// NewService creates a contact service over the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Submit validates and appends a message, evicting the oldest entry once
// the history is full.
func (s *Service) Submit(ctx context.Context, name, email, body string) (*Message, error) {
	if name == "" || body == "" {
		return nil, apperror.NewBadRequest("name and message are required")
	}
	if !user.ValidEmail(email) {
		return nil, apperror.NewBadRequest("email address is not valid")
	}

	msg := &Message{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.loadLocked(ctx)
	messages = append(messages, *msg)
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	data, err := json.Marshal(messages)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := s.store.Set(ctx, keyMessages, string(data)); err != nil {
		return nil, apperror.NewInternal(err)
	}

	slog.Info("contact message received", slog.String("email", email))
	return msg, nil
}

// History returns the stored messages, oldest first.
func (s *Service) History(ctx context.Context) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// loadLocked reads the message list; missing or malformed data reads as
// empty. Callers hold the lock.
func (s *Service) loadLocked(ctx context.Context) []Message {
	raw, ok, err := s.store.Get(ctx, keyMessages)
	if err != nil || !ok {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		slog.Warn("contact history failed to decode, starting empty", slog.Any("error", err))
		return nil
	}
	return messages
}
