package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"playbook/internal/adapters/identity"
	"playbook/internal/adapters/storage"
	accountStore "playbook/internal/adapters/storage/account"
	profileStore "playbook/internal/adapters/storage/profile"
	roleStore "playbook/internal/adapters/storage/role"
	seatStore "playbook/internal/adapters/storage/seat"
	"playbook/internal/adapters/storage/storagetest"
	"playbook/internal/application/projections"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/role"
	"playbook/internal/domain/seat"
)

func newContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &Context{
		Ctx:    context.Background(),
		DB:     storagetest.Open(t),
		Driver: storage.DriverSQLite,
		Out:    out,
		Now:    func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	}, out
}

func TestMigrate_ReportsLatestVersion(t *testing.T) {
	ctx, out := newContext(t)
	require.NoError(t, (&MigrateCmd{}).Run(ctx))
	require.Equal(t, fmt.Sprintf("schema at version %d\n", storage.LatestSchemaVersion()), out.String())
}

func TestCodesGenerate_PrintsAndStoresCodes(t *testing.T) {
	ctx, out := newContext(t)
	require.NoError(t, (&CodesGenerateCmd{Count: 3}).Run(ctx))

	lines := strings.Fields(out.String())
	require.Len(t, lines, 3)
	stored, err := seatStore.NewSQLStore(ctx.DB).ListCodes(ctx.Ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, line := range lines {
		require.Len(t, line, seat.CodeLength)
	}
}

func TestCodesGenerate_RejectsBadCount(t *testing.T) {
	ctx, _ := newContext(t)
	require.ErrorIs(t, (&CodesGenerateCmd{Count: 0}).Run(ctx), seat.ErrInvalidBatch)
}

func TestSeatsSet(t *testing.T) {
	ctx, out := newContext(t)
	require.NoError(t, (&SeatsSetCmd{Total: 25}).Run(ctx))
	require.Contains(t, out.String(), "seat total set to 25")

	inv, err := seatStore.NewSQLStore(ctx.DB).Inventory(ctx.Ctx)
	require.NoError(t, err)
	require.Equal(t, 25, inv.TotalSeats)

	require.ErrorIs(t, (&SeatsSetCmd{Total: -1}).Run(ctx), seat.ErrInvalidTotal)
}

func TestRoleGrantAndRevoke(t *testing.T) {
	ctx, out := newContext(t)
	id, err := identity.New(accountStore.NewSQLStore(ctx.DB), []byte("cli-test-secret"), identity.DefaultGrantTTL)
	require.NoError(t, err)
	acct, err := id.SignUp(ctx.Ctx, "philip@lightmilemedia.com", "correct horse battery", "philip", "m")
	require.NoError(t, err)
	roles := roleStore.NewSQLStore(ctx.DB)

	require.Error(t, (&RoleGrantCmd{Email: "nobody@lightmilemedia.com", Role: role.RoleAdmin}).Run(ctx))

	require.NoError(t, (&RoleGrantCmd{Email: acct.Email, Role: role.RoleAdmin}).Run(ctx))
	require.Contains(t, out.String(), "granted admin to philip@lightmilemedia.com")
	ok, err := roles.HasRole(ctx.Ctx, acct.ID, role.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, (&RoleRevokeCmd{Email: acct.Email, Role: role.RoleAdmin}).Run(ctx))
	ok, err = roles.HasRole(ctx.Ctx, acct.ID, role.RoleAdmin)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExport_WritesWorkbook(t *testing.T) {
	ctx, out := newContext(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, (&ExportCmd{Output: path}).Run(ctx))
	require.Contains(t, out.String(), "0/500 seats claimed, 0% complete, delta n/a")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{projections.SheetSummary, projections.SheetSurveys, projections.SheetFriction}, f.GetSheetList())
}

func TestStats_CountsStatusesAndSubmissions(t *testing.T) {
	ctx, out := newContext(t)
	profiles := profileStore.NewSQLStore(ctx.DB)
	now := ctx.Now()
	for _, id := range []string{"u1", "u2"} {
		_, err := profiles.Create(ctx.Ctx, profile.New(id, now))
		require.NoError(t, err)
	}
	require.NoError(t, profiles.Transition(ctx.Ctx, "u2", profile.StatusStarted, profile.StatusSurveyComplete))

	require.NoError(t, (&StatsCmd{}).Run(ctx))
	got := out.String()
	require.Regexp(t, `started\s+1\n`, got)
	require.Regexp(t, `survey_complete\s+1\n`, got)
	require.Regexp(t, `modules_complete\s+0\n`, got)
	require.Regexp(t, `friction\s+0\n`, got)
}
