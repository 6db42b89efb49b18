package projections

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	reportStore "playbook/internal/adapters/storage/report"
	"playbook/internal/domain/report"
	"playbook/internal/domain/role"
	"playbook/internal/domain/seat"
	"playbook/internal/domain/survey"
)

// AdminReport is the activation's aggregate view.
type AdminReport struct {
	Inventory      seat.Inventory
	Remaining      int
	Completed      int
	CompletionRate int
	Pre            report.Cohort
	Post           report.Cohort
	PreQuestions   []string
	PostQuestions  []string
	Delta          float64
	HasDelta       bool
	FrictionLogs   []reportStore.FrictionLog
}

// FormattedDelta renders the pre to post change with its sign.
func (r AdminReport) FormattedDelta() string {
	if !r.HasDelta {
		return "n/a"
	}
	return report.FormatDelta(r.Delta)
}

// GetAdminReportQuery carries input for the admin report.
type GetAdminReportQuery struct {
	UserID string
}

// GetAdminReportDeps holds dependencies for the admin report.
type GetAdminReportDeps struct {
	Roles   RoleChecker
	Reports reportStore.Store
}

// QueryGetAdminReport checks the caller's admin role and then reads every
// aggregate concurrently.
// PRE: none
// POST: role.ErrAccessDenied without reading any report table unless the
// caller holds the admin role
func QueryGetAdminReport(ctx context.Context, query GetAdminReportQuery, deps GetAdminReportDeps) (AdminReport, error) {
	if query.UserID == "" {
		return AdminReport{}, role.ErrAccessDenied
	}
	ok, err := deps.Roles.HasRole(ctx, query.UserID, role.RoleAdmin)
	if err != nil {
		return AdminReport{}, fmt.Errorf("check role: %w", err)
	}
	if !ok {
		slog.Warn("admin_event", "event", "report_denied", "user_id", query.UserID)
		return AdminReport{}, role.ErrAccessDenied
	}

	var (
		inv       seat.Inventory
		completed int
		preRows   [][]int
		postRows  [][]int
		logs      []reportStore.FrictionLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		inv, err = deps.Reports.SeatInventory(gctx)
		return err
	})
	g.Go(func() (err error) {
		completed, err = deps.Reports.CountCompleted(gctx)
		return err
	})
	g.Go(func() (err error) {
		preRows, err = deps.Reports.SurveyScores(gctx, survey.TypePre)
		return err
	})
	g.Go(func() (err error) {
		postRows, err = deps.Reports.SurveyScores(gctx, survey.TypePost)
		return err
	})
	g.Go(func() (err error) {
		logs, err = deps.Reports.RecentFrictionLogs(gctx, reportStore.FrictionLogLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminReport{}, fmt.Errorf("load report: %w", err)
	}

	r := AdminReport{
		Inventory:      inv,
		Remaining:      inv.Remaining(),
		Completed:      completed,
		CompletionRate: report.CompletionRate(completed, inv.ClaimedSeats),
		Pre:            report.Summarize(survey.TypePre, preRows),
		Post:           report.Summarize(survey.TypePost, postRows),
		PreQuestions:   survey.Questions[survey.TypePre],
		PostQuestions:  survey.Questions[survey.TypePost],
		FrictionLogs:   logs,
	}
	r.Delta, r.HasDelta = report.Delta(r.Pre, r.Post)
	slog.Info("admin_event", "event", "report_viewed", "user_id", query.UserID)
	return r, nil
}
