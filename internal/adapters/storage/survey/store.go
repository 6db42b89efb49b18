package survey

import (
	"context"

	domain "playbook/internal/domain/survey"
)

// Store persists pulse survey responses.
type Store interface {
	Submit(ctx context.Context, r domain.Response) error
	Get(ctx context.Context, userID, surveyType string) (domain.Response, error)
}
