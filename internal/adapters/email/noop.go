package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	domain "playbook/internal/domain/email"
)

// NoopSender logs and records messages without delivering them.
// Used when no provider key is configured.
type NoopSender struct {
	mu   sync.Mutex
	sent []domain.Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records the message.
func (s *NoopSender) Send(_ context.Context, msg domain.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	slog.Info("noop_email_send", "subject", msg.Subject)
	return fmt.Sprintf("noop-%d", len(s.sent)), nil
}

// Sent returns a copy of every recorded message.
func (s *NoopSender) Sent() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.sent...)
}

// FailingSender rejects every message with Err.
type FailingSender struct {
	Err error
}

// Send returns f.Err.
func (f FailingSender) Send(context.Context, domain.Message) (string, error) {
	return "", f.Err
}
