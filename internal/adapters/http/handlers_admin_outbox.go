package web

import (
	"errors"
	"net/http"
	"strconv"

	"playbook/internal/adapters/http/middleware"
	"playbook/internal/application/orchestrators"
	"playbook/internal/domain/outbox"
	"playbook/internal/domain/role"
)

// handleAdminOutbox handles admin endpoints for queued appreciation emails.
// Routes: GET /api/admin/outbox (list failed entries, ?status=pending for the queue),
// POST /api/admin/outbox/{id}/retry, POST /api/admin/outbox/{id}/abandon
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if err := orchestrators.RequireRole(ctx, stores.RoleStore, sess.AccountID, role.RoleAdmin); err != nil {
		if errors.Is(err, role.ErrAccessDenied) {
			http.Error(w, "admin required", http.StatusForbidden)
			return
		}
		internalError(w, err)
		return
	}

	switch r.Method {
	case "GET":
		if r.PathValue("id") != "" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		limit := 50
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
			limit = n
		}

		var entries []outbox.Entry
		var err error
		if r.URL.Query().Get("status") == outbox.StatusPending {
			entries, err = stores.OutboxStore.ListPending(ctx, limit)
		} else {
			entries, err = stores.OutboxStore.ListFailed(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		if entries == nil {
			entries = []outbox.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)

	case "POST":
		entryID := r.PathValue("id")
		if entryID == "" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		processor := outboxProcessor()

		switch r.PathValue("action") {
		case "retry":
			entry, err := processor.ProcessSingle(ctx, entryID)
			if errors.Is(err, outbox.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": entry.Status})

		case "abandon":
			if err := processor.AbandonEntry(ctx, entryID); err != nil {
				if errors.Is(err, outbox.ErrNotFound) {
					http.NotFound(w, r)
					return
				}
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": outbox.StatusAbandoned})

		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
