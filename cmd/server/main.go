package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"playbook/internal/adapters/email"
	web "playbook/internal/adapters/http"
	"playbook/internal/adapters/http/middleware"
	"playbook/internal/adapters/http/perf"
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
	"playbook/internal/config"
	"playbook/internal/domain/access"
	"playbook/internal/domain/exercise"
	"playbook/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	_, logCloser, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	if err := storage.MigrateDB(ctx, db, cfg.DBDriver); err != nil {
		db.Close()
		return err
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, cfg.DBDriver, collector).WithSlowQueryThreshold(cfg.SlowQueryThreshold())
	defer timedDB.Close()

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
	if err := stores.SeatStore.SetTotal(ctx, cfg.TotalSeats); err != nil {
		slog.Warn("seat_total_unchanged", "requested", cfg.TotalSeats, "error", err)
	}

	secret, err := keyOrRandom(cfg.SessionSecret)
	if err != nil {
		return err
	}
	idSvc, err := identity.New(stores.AccountStore, secret, cfg.GrantTTL)
	if err != nil {
		return err
	}
	csrfKey, err := keyOrRandom(cfg.CSRFKey)
	if err != nil {
		return err
	}

	var mailer email.Sender
	if cfg.ResendKey != "" {
		mailer = email.NewResendSender(cfg.ResendKey)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		mailer = email.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "note", "PLAYBOOK_RESEND_KEY is not set, appreciation emails are not delivered")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	sessions := middleware.NewSessionStore()
	unsubscribe := sessions.Subscribe(web.PopulateProfile)
	defer unsubscribe()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond)
	go limiter.Run(ctx)

	handler := web.NewMux(stores, web.Options{
		Identity:       idSvc,
		Sessions:       sessions,
		Mailer:         mailer,
		MailFrom:       cfg.MailFrom,
		AllowList:      access.NewAllowList(cfg.AllowedEmails, cfg.AllowedDomains),
		FrictionPolicy: exercise.FrictionPolicy{MinPoints: cfg.FrictionMinPoints},
		CSRFKey:        csrfKey,
		Secure:         cfg.IsProduction(),
		Limiter:        limiter,
		SlowRequest:    cfg.SlowRequestThreshold(),
		Health:         timedDB.PingContext,
	}, collector)

	stopOutbox := web.StartOutboxWorker(ctx, cfg.OutboxInterval)
	defer stopOutbox()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"driver", cfg.DBDriver, "schema", storage.LatestSchemaVersion())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("server_shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// keyOrRandom returns configured as bytes, or a random key for development.
// Sessions and grants signed with a random key do not survive a restart.
func keyOrRandom(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
