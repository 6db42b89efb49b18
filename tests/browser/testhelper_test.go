package browser_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"playbook/internal/adapters/email"
	web "playbook/internal/adapters/http"
	"playbook/internal/adapters/http/middleware"
	"playbook/internal/adapters/identity"
	"playbook/internal/adapters/storage"
	accountStore "playbook/internal/adapters/storage/account"
	exerciseStore "playbook/internal/adapters/storage/exercise"
	outboxStore "playbook/internal/adapters/storage/outbox"
	profileStore "playbook/internal/adapters/storage/profile"
	reportStore "playbook/internal/adapters/storage/report"
	roleStore "playbook/internal/adapters/storage/role"
	seatStore "playbook/internal/adapters/storage/seat"
	surveyStore "playbook/internal/adapters/storage/survey"
	"playbook/internal/domain/access"
	"playbook/internal/domain/exercise"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Stores  *web.Stores
	Mailer  *email.NoopSender
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp serves the full middleware chain over a temp SQLite file and
// launches headless Chromium.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in -short mode")
	}

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, storage.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(ctx, db, storage.DriverSQLite); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}
	timedDB := storage.NewTimedDB(db, storage.DriverSQLite, nil)

	stores := &web.Stores{
		AccountStore:    accountStore.NewSQLStore(timedDB),
		ProfileStore:    profileStore.NewSQLStore(timedDB),
		SubmissionStore: exerciseStore.NewSQLStore(timedDB),
		SurveyStore:     surveyStore.NewSQLStore(timedDB),
		SeatStore:       seatStore.NewSQLStore(timedDB),
		RoleStore:       roleStore.NewSQLStore(timedDB),
		OutboxStore:     outboxStore.NewSQLStore(timedDB),
		ReportStore:     reportStore.NewSQLStore(timedDB),
	}
	idSvc, err := identity.New(stores.AccountStore, []byte("browser-test-secret"), identity.DefaultGrantTTL)
	if err != nil {
		t.Fatalf("failed to create identity service: %v", err)
	}
	mailer := email.NewNoopSender()
	sessions := middleware.NewSessionStore()
	t.Cleanup(sessions.Subscribe(web.PopulateProfile))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	handler := web.NewMux(stores, web.Options{
		Identity:       idSvc,
		Sessions:       sessions,
		Mailer:         mailer,
		MailFrom:       "notes@evolutionofsmooth.com",
		AllowList:      access.DefaultAllowList(),
		FrictionPolicy: exercise.DefaultFrictionPolicy,
		CSRFKey:        []byte("browser-test-csrf-key-32-bytes!!"),
		TrustedOrigins: []string{listener.Addr().String()},
		Limiter:        middleware.NewRateLimiter(1000),
	}, nil)
	srv := &httptest.Server{Listener: listener, Config: &http.Server{Handler: handler}}
	srv.Start()

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		timedDB.Close()
	})

	return &testApp{
		BaseURL: srv.URL,
		Stores:  stores,
		Mailer:  mailer,
		PW:      pw,
		Browser: browser,
	}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// enterGate fills the landing form and waits for the dashboard.
func (a *testApp) enterGate(t *testing.T, page playwright.Page, first, last, addr string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/"); err != nil {
		t.Fatalf("failed to navigate to gate: %v", err)
	}
	fill(t, page, "input[name=FirstName]", first)
	fill(t, page, "input[name=LastName]", last)
	fill(t, page, "input[name=Email]", addr)
	click(t, page, "form[action='/gate'] button[type=submit]")
	if err := page.WaitForURL(a.BaseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("gate did not redirect to dashboard: %v", err)
	}
}

func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("failed to fill %s: %v", selector, err)
	}
}

func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).Click(); err != nil {
		t.Fatalf("failed to click %s: %v", selector, err)
	}
}

func bodyText(t *testing.T, page playwright.Page) string {
	t.Helper()
	text, err := page.Locator("body").TextContent()
	if err != nil {
		t.Fatalf("failed to read page text: %v", err)
	}
	return text
}
