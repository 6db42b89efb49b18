package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"playbook/internal/domain/profile"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	profileContextKey contextKey = "profile"
)

// SessionTTL bounds how long a session stays valid.
const SessionTTL = 24 * time.Hour

const sessionCookieName = "playbook_session"

// Session change event types.
const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// Session is an authenticated browser session.
type Session struct {
	AccountID string
	Email     string
	CreatedAt time.Time
}

// SessionEvent is delivered to subscribers when a session starts or ends.
type SessionEvent struct {
	Type    string
	Session Session
}

// SessionListener reacts to session changes. It runs on the goroutine that
// caused the change, after the store lock is released.
type SessionListener func(ctx context.Context, ev SessionEvent)

// SessionStore is an in-memory session store with change notifications.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	listeners map[int]SessionListener
	nextID    int
	now       func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]Session),
		listeners: make(map[int]SessionListener),
		now:       time.Now,
	}
}

// SetClock replaces the store's time source. Intended for tests.
func (ss *SessionStore) SetClock(now func() time.Time) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.now = now
}

// Subscribe registers fn for session events and returns a function that
// removes it. Calling the returned function more than once is harmless.
func (ss *SessionStore) Subscribe(fn SessionListener) (unsubscribe func()) {
	ss.mu.Lock()
	id := ss.nextID
	ss.nextID++
	ss.listeners[id] = fn
	ss.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ss.mu.Lock()
			delete(ss.listeners, id)
			ss.mu.Unlock()
		})
	}
}

// Create stores a new session, notifies subscribers, and returns its token.
// PRE: accountID and email are non-empty
// POST: Session is stored; subscribers have seen EventSignedIn
func (ss *SessionStore) Create(ctx context.Context, accountID, email string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	s := Session{AccountID: accountID, Email: email, CreatedAt: ss.now()}
	ss.sessions[token] = s
	ss.mu.Unlock()

	slog.Info("auth_event", "event", EventSignedIn, "account_id", accountID)
	ss.notify(ctx, SessionEvent{Type: EventSignedIn, Session: s})
	return token, nil
}

// Get returns the session for token when it exists and has not expired.
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	s, ok := ss.sessions[token]
	now := ss.now()
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if now.Sub(s.CreatedAt) > SessionTTL {
		ss.mu.Lock()
		delete(ss.sessions, token)
		ss.mu.Unlock()
		return Session{}, false
	}
	return s, true
}

// Delete ends the session for token and notifies subscribers.
// POST: Session removed; EventSignedOut delivered if it existed
func (ss *SessionStore) Delete(ctx context.Context, token string) {
	ss.mu.Lock()
	s, ok := ss.sessions[token]
	delete(ss.sessions, token)
	ss.mu.Unlock()
	if !ok {
		return
	}
	slog.Info("auth_event", "event", EventSignedOut, "account_id", s.AccountID)
	ss.notify(ctx, SessionEvent{Type: EventSignedOut, Session: s})
}

func (ss *SessionStore) notify(ctx context.Context, ev SessionEvent) {
	ss.mu.RLock()
	fns := make([]SessionListener, 0, len(ss.listeners))
	for _, fn := range ss.listeners {
		fns = append(fns, fn)
	}
	ss.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx, ev)
	}
}

// Auth puts the cookie's session, if any, into the request context.
// It never blocks; see RequireAuth.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				if s, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProfileLoader fetches the profile of a signed-in user.
type ProfileLoader func(ctx context.Context, userID string) (profile.Profile, error)

// LoadProfile attaches the signed-in user's profile to the context. A
// missing profile is not an error here; handlers decide what to do.
func LoadProfile(load ProfileLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := GetSessionFromContext(r.Context()); ok {
				p, err := load(r.Context(), s.AccountID)
				if err == nil {
					r = r.WithContext(ContextWithProfile(r.Context(), p))
				} else {
					slog.Debug("profile_not_loaded", "account_id", s.AccountID, "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth sends anonymous visitors back to the gate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	return s, ok
}

// ContextWithSession returns ctx carrying s.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// ProfileFromContext returns the profile LoadProfile attached, if any.
func ProfileFromContext(ctx context.Context) (profile.Profile, bool) {
	p, ok := ctx.Value(profileContextKey).(profile.Profile)
	return p, ok
}

// ContextWithProfile returns ctx carrying p.
func ContextWithProfile(ctx context.Context, p profile.Profile) context.Context {
	return context.WithValue(ctx, profileContextKey, p)
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
	})
}

// SessionToken returns the raw session cookie value, if present.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
