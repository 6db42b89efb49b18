package report

import (
	"context"
	"time"

	"playbook/internal/domain/seat"
)

// FrictionLogLimit is how many recent friction logs the admin view shows.
const FrictionLogLimit = 50

// FrictionLog is one friction submission as shown to admins.
type FrictionLog struct {
	ID        string
	UserID    string
	Struggles []string
	CreatedAt time.Time
}

// Store is the read side backing the admin report. Every method reads a
// protected table, so callers check authorization first.
type Store interface {
	SeatInventory(ctx context.Context) (seat.Inventory, error)
	CountCompleted(ctx context.Context) (int, error)
	SurveyScores(ctx context.Context, surveyType string) ([][]int, error)
	RecentFrictionLogs(ctx context.Context, limit int) ([]FrictionLog, error)
}
