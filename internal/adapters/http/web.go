package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"playbook/internal/adapters/email"
	"playbook/internal/adapters/http/middleware"
	"playbook/internal/adapters/http/perf"
	"playbook/internal/adapters/identity"
	accountStore "playbook/internal/adapters/storage/account"
	exerciseStore "playbook/internal/adapters/storage/exercise"
	outboxStore "playbook/internal/adapters/storage/outbox"
	profileStore "playbook/internal/adapters/storage/profile"
	reportStore "playbook/internal/adapters/storage/report"
	roleStore "playbook/internal/adapters/storage/role"
	seatStore "playbook/internal/adapters/storage/seat"
	surveyStore "playbook/internal/adapters/storage/survey"
	"playbook/internal/application/orchestrators"
	"playbook/internal/domain/access"
	"playbook/internal/domain/exercise"
	"playbook/internal/domain/outbox"
	"playbook/internal/domain/profile"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	ProfileStore    profileStore.Store
	SubmissionStore exerciseStore.Store
	SurveyStore     surveyStore.Store
	SeatStore       seatStore.Store
	RoleStore       roleStore.Store
	OutboxStore     outboxStore.Store
	ReportStore     reportStore.Store
}

// Options carries the non-storage collaborators and policy of the server.
type Options struct {
	Identity       *identity.Service
	Sessions       *middleware.SessionStore
	Mailer         email.Sender
	MailFrom       string
	AllowList      access.AllowList
	FrictionPolicy exercise.FrictionPolicy
	CSRFKey        []byte
	Secure         bool
	TrustedOrigins []string
	Limiter        *middleware.RateLimiter
	SlowRequest    time.Duration
	Health         func(ctx context.Context) error
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global identity service
var identitySvc *identity.Service

// Mail and policy settings (set by NewMux)
var (
	mailer         email.Sender
	mailFrom       string
	allowList      access.AllowList
	frictionPolicy exercise.FrictionPolicy
	secureCookies  bool
	healthCheck    func(ctx context.Context) error
)

// timeNow is a variable for testability.
var timeNow = time.Now

// configure installs the package-level dependencies used by the handlers.
func configure(s *Stores, opts Options) {
	stores = s
	sessions = opts.Sessions
	if sessions == nil {
		sessions = middleware.NewSessionStore()
	}
	identitySvc = opts.Identity
	mailer = opts.Mailer
	if mailer == nil {
		mailer = email.NewNoopSender()
	}
	mailFrom = opts.MailFrom
	allowList = opts.AllowList
	frictionPolicy = opts.FrictionPolicy.Normalized()
	secureCookies = opts.Secure
	healthCheck = opts.Health
}

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; opts.Identity and opts.CSRFKey are set
// POST: Returns the full middleware chain around the route table
func NewMux(s *Stores, opts Options, collector *perf.Collector) http.Handler {
	configure(s, opts)

	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux)

	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(10)
	}

	// Timing -> Recover -> SecurityHeaders -> RateLimit -> CSRF -> Auth -> LoadProfile -> Mux
	return middleware.Chain(mux,
		middleware.Timing(collector, opts.SlowRequest),
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{Secure: opts.Secure, TrustedOrigins: opts.TrustedOrigins}),
		middleware.Auth(sessions),
		middleware.LoadProfile(loadProfile),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/{$}", handleGate)
	mux.HandleFunc("/gate", handleGateSubmit)
	mux.HandleFunc("/register", handleRegister)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/healthz", handleHealthz)

	mux.Handle("/dashboard", middleware.RequireAuth(http.HandlerFunc(handleDashboard)))
	mux.Handle("/exercise/{id}", middleware.RequireAuth(http.HandlerFunc(handleExercise)))
	mux.Handle("/module/{id}", middleware.RequireAuth(http.HandlerFunc(handleExercise)))
	mux.Handle("/survey/{type}", middleware.RequireAuth(http.HandlerFunc(handleSurvey)))
	mux.Handle("/certificate", middleware.RequireAuth(http.HandlerFunc(handleCertificate)))

	mux.Handle("/admin-dashboard", middleware.RequireAuth(http.HandlerFunc(handleAdminDashboard)))
	mux.Handle("/admin-dashboard/export", middleware.RequireAuth(http.HandlerFunc(handleAdminExport)))
	mux.HandleFunc("/api/admin/access-codes", handleAccessCodes)
	mux.HandleFunc("/api/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("/api/admin/outbox/{id}/{action}", handleAdminOutbox)
}

// loadProfile backs the profile middleware; a signed-in user without a
// profile gets one on first request.
func loadProfile(ctx context.Context, userID string) (profile.Profile, error) {
	return orchestrators.LoadProfile(ctx, userID, ensureProfileDeps())
}

func ensureProfileDeps() orchestrators.EnsureProfileDeps {
	return orchestrators.EnsureProfileDeps{
		Profiles: stores.ProfileStore,
		Accounts: stores.AccountStore,
		Seats:    stores.SeatStore,
		Now:      timeNow,
	}
}

// PopulateProfile is the session listener that creates or completes the
// profile of an account as it signs in.
func PopulateProfile(ctx context.Context, ev middleware.SessionEvent) {
	if ev.Type != middleware.EventSignedIn {
		return
	}
	if _, err := orchestrators.ExecuteEnsureProfile(ctx, ev.Session.AccountID, ensureProfileDeps()); err != nil {
		slog.Error("internal_error", "op", "ensure_profile", "account_id", ev.Session.AccountID, "error", err)
	}
}

// outboxProcessor builds a processor that can replay every action type the
// app enqueues.
func outboxProcessor() *orchestrators.OutboxProcessor {
	return orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeAppreciationEmail: orchestrators.AppreciationEmailExecutor{Mailer: mailer, MailFrom: mailFrom},
	})
}

// StartOutboxWorker replays queued appreciation emails every interval.
// PRE: NewMux has been called
// POST: The returned function stops the worker and waits for it
func StartOutboxWorker(ctx context.Context, interval time.Duration) (stop func()) {
	return orchestrators.StartOutboxWorker(ctx, outboxProcessor(), interval)
}
