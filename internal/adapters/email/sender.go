// Package email delivers composed messages through a mail provider.
package email

import (
	"context"

	domain "playbook/internal/domain/email"
)

// Sender delivers one composed message and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg domain.Message) (string, error)
}
