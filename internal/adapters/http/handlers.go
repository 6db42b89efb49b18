package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"playbook/internal/adapters/http/middleware"
	"playbook/internal/adapters/identity"
	"playbook/internal/application/orchestrators"
	"playbook/internal/domain/access"
	"playbook/internal/domain/account"
	"playbook/internal/domain/report"
	"playbook/internal/domain/role"
	"playbook/internal/domain/seat"
	"playbook/internal/domain/survey"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

// renderTemplateStatus renders layout.html around templateName. The page is
// rendered to a buffer first so a template failure still yields a clean 500.
func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	p, hasProfile := middleware.ProfileFromContext(r.Context())

	funcMap := template.FuncMap{
		"csrfToken":    func() string { return csrf.Token(r) },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"isLoggedIn":   func() bool { return loggedIn },
		"currentEmail": func() string { return sess.Email },
		"currentName": func() string {
			if hasProfile && p.FullName() != "" {
				return p.FullName()
			}
			return sess.Email
		},
		"isAdmin": func() bool {
			if !loggedIn {
				return false
			}
			ok, err := stores.RoleStore.HasRole(r.Context(), sess.AccountID, role.RoleAdmin)
			return err == nil && ok
		},
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"formatAverage": report.FormatAverage,
		"add":           func(a, b int) int { return a + b },
		"join":          strings.Join,
		"contains": func(list []string, v string) bool {
			for _, s := range list {
				if s == v {
					return true
				}
			}
			return false
		},
		"at": func(list []string, i int) string {
			if i < 0 || i >= len(list) {
				return ""
			}
			return list[i]
		},
		"likert": func() []int {
			out := make([]int, 0, survey.MaxScore)
			for s := survey.MinScore; s <= survey.MaxScore; s++ {
				out = append(out, s)
			}
			return out
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderDenied shows the access denied page.
func renderDenied(w http.ResponseWriter, r *http.Request, message string) {
	renderTemplateStatus(w, r, http.StatusForbidden, "denied.html", map[string]any{
		"Message": message,
	})
}

// startSession creates a session for acct, sets the cookie and sends the
// browser to the dashboard.
func startSession(w http.ResponseWriter, r *http.Request, acct account.Account) {
	token, err := sessions.Create(r.Context(), acct.ID, acct.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token, secureCookies)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleGate renders the landing page for GET /
func handleGate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "gate.html", map[string]any{"Form": url.Values{}})
}

// handleGateSubmit handles POST /gate: allow-list check, then a passwordless
// grant that is redeemed straight into a session.
func handleGateSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.EnterGateInput{
		FirstName: r.FormValue("FirstName"),
		LastName:  r.FormValue("LastName"),
		Email:     r.FormValue("Email"),
	}
	deps := orchestrators.EnterGateDeps{
		AllowList: allowList,
		Identity:  identitySvc,
	}

	grant, err := orchestrators.ExecuteEnterGate(r.Context(), input, deps)
	if err != nil {
		status := http.StatusInternalServerError
		msg := orchestrators.ErrPersistence.Error()
		switch {
		case errors.Is(err, access.ErrNameRequired):
			status, msg = http.StatusBadRequest, err.Error()
		case errors.Is(err, access.ErrAccessRestricted):
			status, msg = http.StatusForbidden, err.Error()
		case isAccountValidation(err):
			status, msg = http.StatusBadRequest, err.Error()
		case isIdentityError(err):
			status, msg = http.StatusUnauthorized, err.Error()
		default:
			slog.Error("internal_error", "op", "enter_gate", "error", err)
		}
		renderGateError(w, r, status, msg)
		return
	}

	acct, err := identitySvc.Redeem(r.Context(), grant.Token)
	if err != nil {
		status, msg := http.StatusUnauthorized, err.Error()
		if !isIdentityError(err) {
			slog.Error("internal_error", "op", "redeem_grant", "error", err)
			status, msg = http.StatusInternalServerError, "sign in failed. please try again."
		}
		renderGateError(w, r, status, msg)
		return
	}
	startSession(w, r, acct)
}

// renderGateError re-renders the gate form with the submitted values kept.
func renderGateError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	renderTemplateStatus(w, r, status, "gate.html", map[string]any{
		"Form":  r.PostForm,
		"Error": msg,
	})
}

// handleRegister handles GET (form) and POST (sign up with access code) for /register
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		renderTemplate(w, r, "register.html", map[string]any{"Form": url.Values{}})
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.RegisterWithCodeInput{
		Email:     r.FormValue("Email"),
		Password:  r.FormValue("Password"),
		FirstName: r.FormValue("FirstName"),
		LastName:  r.FormValue("LastName"),
		Code:      r.FormValue("Code"),
	}
	deps := orchestrators.RegisterWithCodeDeps{
		Identity: identitySvc,
		Seats:    stores.SeatStore,
		Now:      timeNow,
	}

	acct, err := orchestrators.ExecuteRegisterWithCode(r.Context(), input, deps)
	if err != nil {
		status := http.StatusBadRequest
		msg := err.Error()
		switch {
		case errors.Is(err, seat.ErrCodeInvalid), errors.Is(err, seat.ErrEmptyCode), errors.Is(err, seat.ErrNoSeats):
		case isAccountValidation(err):
		default:
			slog.Error("internal_error", "op", "register_with_code", "error", err)
			status, msg = http.StatusInternalServerError, orchestrators.ErrPersistence.Error()
		}
		form := r.PostForm
		form.Del("Password")
		renderTemplateStatus(w, r, status, "register.html", map[string]any{
			"Form":  form,
			"Error": msg,
		})
		return
	}
	startSession(w, r, acct)
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{"Form": url.Values{}})
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SignInInput{
		Email:    r.FormValue("Email"),
		Password: r.FormValue("Password"),
	}
	acct, err := orchestrators.ExecuteSignIn(r.Context(), input, orchestrators.SignInDeps{Identity: identitySvc})
	if err != nil {
		status := http.StatusUnauthorized
		msg := err.Error()
		if !errors.Is(err, account.ErrWrongPassword) && !errors.Is(err, account.ErrLocked) {
			slog.Error("internal_error", "op", "sign_in", "error", err)
			status, msg = http.StatusInternalServerError, "sign in failed. please try again."
		}
		renderTemplateStatus(w, r, status, "login.html", map[string]any{
			"Form":  url.Values{"Email": {input.Email}},
			"Error": msg,
		})
		return
	}
	startSession(w, r, acct)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(r.Context(), token)
	}
	middleware.ClearSessionCookie(w, secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleHealthz reports liveness and, when configured, database reachability.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if healthCheck != nil {
		if err := healthCheck(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// isIdentityError reports whether err is a sign-in failure the identity
// service words for the user.
func isIdentityError(err error) bool {
	return errors.Is(err, identity.ErrInvalidGrant) ||
		errors.Is(err, identity.ErrGrantUsed) ||
		errors.Is(err, account.ErrLocked)
}

// isAccountValidation reports whether err is a user-correctable account error.
func isAccountValidation(err error) bool {
	for _, target := range []error{
		account.ErrInvalidEmail, account.ErrEmptyEmail, account.ErrEmailTooLong,
		account.ErrNameTooLong, account.ErrEmptyPassword, account.ErrPasswordTooShort,
		account.ErrEmailTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
