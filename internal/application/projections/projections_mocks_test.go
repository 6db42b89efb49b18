package projections

import (
	"context"
	"sync/atomic"

	reportStore "playbook/internal/adapters/storage/report"
	"playbook/internal/domain/account"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/seat"
)

type stubProfiles map[string]profile.Profile

func (s stubProfiles) Get(_ context.Context, userID string) (profile.Profile, error) {
	p, ok := s[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

type stubAccounts map[string]account.Account

func (s stubAccounts) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := s[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

type stubRoles map[string]bool

func (s stubRoles) HasRole(_ context.Context, userID, r string) (bool, error) {
	return s[userID+"/"+r], nil
}

// countingReports records every protected read.
type countingReports struct {
	reads     atomic.Int32
	inv       seat.Inventory
	completed int
	scores    map[string][][]int
	logs      []reportStore.FrictionLog
	err       error
}

func (c *countingReports) SeatInventory(context.Context) (seat.Inventory, error) {
	c.reads.Add(1)
	return c.inv, c.err
}

func (c *countingReports) CountCompleted(context.Context) (int, error) {
	c.reads.Add(1)
	return c.completed, c.err
}

func (c *countingReports) SurveyScores(_ context.Context, t string) ([][]int, error) {
	c.reads.Add(1)
	return c.scores[t], c.err
}

func (c *countingReports) RecentFrictionLogs(_ context.Context, limit int) ([]reportStore.FrictionLog, error) {
	c.reads.Add(1)
	return c.logs, c.err
}
