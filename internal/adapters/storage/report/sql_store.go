package report

import (
	"context"
	"fmt"

	"playbook/internal/adapters/storage"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/seat"
)

// SQLStore implements Store with sqlx struct scanning.
type SQLStore struct {
	db storage.Selecter
}

// NewSQLStore creates a new report store.
func NewSQLStore(db storage.Selecter) *SQLStore {
	return &SQLStore{db: db}
}

type inventoryRow struct {
	Total   int `db:"total_seats"`
	Claimed int `db:"claimed_seats"`
}

type surveyRow struct {
	Q1 int `db:"q1"`
	Q2 int `db:"q2"`
	Q3 int `db:"q3"`
	Q4 int `db:"q4"`
}

type frictionRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Struggle1 string `db:"struggle_1"`
	Struggle2 string `db:"struggle_2"`
	Struggle3 string `db:"struggle_3"`
	CreatedAt string `db:"created_at"`
}

// SeatInventory returns the seat counter.
func (s *SQLStore) SeatInventory(ctx context.Context) (seat.Inventory, error) {
	var row inventoryRow
	if err := s.db.GetContext(ctx, &row, `SELECT total_seats, claimed_seats FROM seat_inventory WHERE id = 1`); err != nil {
		return seat.Inventory{}, fmt.Errorf("seat inventory: %w", err)
	}
	return seat.Inventory{TotalSeats: row.Total, ClaimedSeats: row.Claimed}, nil
}

// CountCompleted counts profiles that finished the post survey.
func (s *SQLStore) CountCompleted(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles WHERE status = ?`, profile.StatusModulesComplete); err != nil {
		return 0, fmt.Errorf("count completed: %w", err)
	}
	return n, nil
}

// SurveyScores returns every response of surveyType as q1..q4 score rows.
// Unasked questions are 0.
func (s *SQLStore) SurveyScores(ctx context.Context, surveyType string) ([][]int, error) {
	var rows []surveyRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT q1, q2, q3, q4 FROM pulse_surveys WHERE type = ? ORDER BY created_at`, surveyType); err != nil {
		return nil, fmt.Errorf("survey scores: %w", err)
	}
	out := make([][]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, []int{r.Q1, r.Q2, r.Q3, r.Q4})
	}
	return out, nil
}

// RecentFrictionLogs returns the newest friction logs first.
// POST: Blank struggle slots are dropped
func (s *SQLStore) RecentFrictionLogs(ctx context.Context, limit int) ([]FrictionLog, error) {
	var rows []frictionRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, struggle_1, struggle_2, struggle_3, created_at
		 FROM friction_logs ORDER BY created_at DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("recent friction logs: %w", err)
	}
	out := make([]FrictionLog, 0, len(rows))
	for _, r := range rows {
		log := FrictionLog{ID: r.ID, UserID: r.UserID, CreatedAt: storage.ParseTime(r.CreatedAt)}
		for _, struggle := range []string{r.Struggle1, r.Struggle2, r.Struggle3} {
			if struggle != "" {
				log.Struggles = append(log.Struggles, struggle)
			}
		}
		out = append(out, log)
	}
	return out, nil
}
