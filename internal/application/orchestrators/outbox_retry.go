package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"playbook/internal/domain/email"
	"playbook/internal/domain/outbox"
)

// Retry schedule defaults.
const (
	DefaultOutboxBaseDelay = time.Minute
	DefaultOutboxMaxDelay  = time.Hour
	DefaultOutboxBatchSize = 25
)

// ActionExecutor executes a specific type of deferred action.
type ActionExecutor interface {
	// Execute runs the action with the given payload and returns the
	// provider's id for it.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor retries deferred actions with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: DefaultOutboxBaseDelay,
		maxDelay:  DefaultOutboxMaxDelay,
		batchSize: DefaultOutboxBatchSize,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (p *OutboxProcessor) SetClock(now func() time.Time) {
	p.now = now
}

// ProcessPending attempts every pending entry whose backoff has elapsed.
// PRE: Context is valid
// POST: Attempted entries are saved as done, retrying, or failed
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (attempted int, err error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}
	now := p.now()
	for _, entry := range entries {
		if now.Before(entry.DueAt(p.baseDelay, p.maxDelay)) {
			continue
		}
		attempted++
		if err := p.attempt(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err)
		}
	}
	return attempted, nil
}

// ProcessSingle retries one entry immediately, ignoring backoff.
// PRE: entryID is non-empty
// POST: Entry is attempted and saved; terminal entries are rejected
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (outbox.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return outbox.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.Status == outbox.StatusDone || entry.Status == outbox.StatusAbandoned {
		return entry, fmt.Errorf("entry %s is %s and cannot be retried", entryID, entry.Status)
	}
	if entry.Attempts >= entry.MaxAttempts {
		entry.MaxAttempts = entry.Attempts + 1
	}
	if err := p.attempt(ctx, entry); err != nil {
		return outbox.Entry{}, err
	}
	return p.store.GetByID(ctx, entryID)
}

// AbandonEntry marks an entry as abandoned.
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	slog.Info("outbox_action_abandoned", "entry_id", entry.ID)
	return p.store.Save(ctx, entry)
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry outbox.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	entry.MarkAttempt(p.now())
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// AppreciationEmailExecutor replays a queued appreciation note.
type AppreciationEmailExecutor struct {
	Mailer   Mailer
	MailFrom string
}

// Execute composes and sends the note.
// PRE: payload is a JSON email.Appreciation
// POST: Returns the provider message id
func (e AppreciationEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var note email.Appreciation
	if err := json.Unmarshal([]byte(payload), &note); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	msg, err := email.Compose(note, e.MailFrom)
	if err != nil {
		return "", err
	}
	return e.Mailer.Send(ctx, msg)
}

// StartOutboxWorker runs ProcessPending every interval until ctx is done.
// POST: Goroutine started; the returned function stops it and waits for it to exit
func StartOutboxWorker(ctx context.Context, p *OutboxProcessor, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := p.ProcessPending(ctx)
				if err != nil {
					slog.Error("outbox_worker_error", "error", err)
				} else if n > 0 {
					slog.Info("outbox_worker_pass", "attempted", n)
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
