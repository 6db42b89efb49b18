package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"playbook/internal/adapters/http/perf"
)

// DefaultSlowRequest is used when Timing is given a non-positive threshold.
const DefaultSlowRequest = 500 * time.Millisecond

type requestIDKey struct{}

var requestCounter atomic.Uint64

// RequestIDFromContext returns the id Timing assigned to the request, or 0.
func RequestIDFromContext(ctx context.Context) uint64 {
	id, _ := ctx.Value(requestIDKey{}).(uint64)
	return id
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Timing logs request duration and records it in collector (which may be nil).
// Requests under /static/ are not timed. Requests slower than slow log at WARN.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			id := requestCounter.Add(1)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				elapsed := time.Since(start)
				attrs := []any{
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"duration_ms", float64(elapsed.Microseconds()) / 1000.0,
				}
				if elapsed >= slow {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}
				collector.Record(perf.Sample{
					Kind:       perf.KindRequest,
					Label:      r.Method + " " + r.URL.Path,
					StatusCode: rec.status,
					DurationMs: float64(elapsed.Microseconds()) / 1000.0,
					At:         start,
				})
			}()

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}
