package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"playbook/internal/adapters/certificate"
	"playbook/internal/adapters/http/middleware"
	"playbook/internal/application/orchestrators"
	"playbook/internal/application/projections"
	certificateDomain "playbook/internal/domain/certificate"
	"playbook/internal/domain/exercise"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/survey"
)

// handleDashboard handles GET /dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	renderDashboard(w, r, sess.AccountID, http.StatusOK, nil)
}

// renderDashboard renders the dashboard with an optional flash message.
func renderDashboard(w http.ResponseWriter, r *http.Request, userID string, status int, flash map[string]any) {
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{UserID: userID},
		projections.GetDashboardDeps{Profiles: stores.ProfileStore})
	if err != nil {
		internalError(w, err)
		return
	}
	data := map[string]any{"Dashboard": result}
	for k, v := range flash {
		data[k] = v
	}
	renderTemplateStatus(w, r, status, "dashboard.html", data)
}

// handleExercise handles GET (page) and POST (submit) for /exercise/{id}
func handleExercise(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	key := r.PathValue("id")

	switch r.Method {
	case "GET":
		renderExercise(w, r, sess, key, http.StatusOK, url.Values{}, nil)
	case "POST":
		submitExercise(w, r, sess, key)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func renderExercise(w http.ResponseWriter, r *http.Request, sess middleware.Session, key string, status int, form url.Values, flash map[string]any) {
	page, err := projections.QueryGetExercise(r.Context(), projections.GetExerciseQuery{
		UserID:      sess.AccountID,
		Exercise:    key,
		SenderEmail: sess.Email,
	}, projections.GetExerciseDeps{Profiles: stores.ProfileStore, Policy: frictionPolicy})
	if errors.Is(err, exercise.ErrUnknownExercise) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	data := map[string]any{"Page": page, "Form": form}
	for k, v := range flash {
		data[k] = v
	}
	renderTemplateStatus(w, r, status, "exercise.html", data)
}

func submitExercise(w http.ResponseWriter, r *http.Request, sess middleware.Session, key string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SubmitExerciseInput{
		UserID:   sess.AccountID,
		Exercise: key,
		Friction: frictionFromForm(r.PostForm),
		Makeover: exercise.Makeover{
			Asset:       r.PostForm.Get("Asset"),
			Description: r.PostForm.Get("Description"),
			Tags:        r.PostForm["Tags"],
		},
		Signal: exercise.Signal{
			SenderEmail:    sess.Email,
			SenderName:     r.PostForm.Get("SenderName"),
			RecipientEmail: r.PostForm.Get("RecipientEmail"),
			Subject:        r.PostForm.Get("Subject"),
			Message:        r.PostForm.Get("Message"),
		},
	}
	deps := orchestrators.SubmitExerciseDeps{
		Profiles:    stores.ProfileStore,
		Submissions: stores.SubmissionStore,
		Mailer:      mailer,
		Outbox:      stores.OutboxStore,
		Policy:      frictionPolicy,
		MailFrom:    mailFrom,
		GenerateID:  generateID,
		Now:         timeNow,
	}

	_, err := orchestrators.ExecuteSubmitExercise(r.Context(), input, deps)
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	case errors.Is(err, exercise.ErrUnknownExercise):
		http.NotFound(w, r)
	case errors.Is(err, orchestrators.ErrMailDispatch):
		renderDashboard(w, r, sess.AccountID, http.StatusOK, map[string]any{"Warning": err.Error()})
	case exercise.IsValidationError(err):
		renderExercise(w, r, sess, key, http.StatusBadRequest, r.PostForm, map[string]any{"Error": err.Error()})
	case errors.Is(err, orchestrators.ErrExerciseLocked):
		renderExercise(w, r, sess, key, http.StatusForbidden, r.PostForm, map[string]any{"Error": err.Error()})
	case errors.Is(err, orchestrators.ErrPersistence):
		renderExercise(w, r, sess, key, http.StatusInternalServerError, r.PostForm, map[string]any{"Error": err.Error()})
	default:
		slog.Error("internal_error", "op", "submit_exercise", "exercise", key, "error", err)
		renderExercise(w, r, sess, key, http.StatusInternalServerError, r.PostForm,
			map[string]any{"Error": orchestrators.ErrPersistence.Error()})
	}
}

// frictionFromForm reads Category_N/Text_N pairs.
func frictionFromForm(form url.Values) exercise.FrictionLog {
	var log exercise.FrictionLog
	for i := 0; i < exercise.MaxFrictionPoints; i++ {
		n := strconv.Itoa(i)
		log.Points = append(log.Points, exercise.FrictionPoint{
			Category: form.Get("Category_" + n),
			Text:     form.Get("Text_" + n),
		})
	}
	return log
}

// handleSurvey handles POST /survey/{type}
func handleSurvey(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	surveyType := r.PathValue("type")
	var scores []int
	for i := 0; i < len(survey.Questions[surveyType]); i++ {
		// An unanswered or malformed rating becomes 0, which reads as unrated.
		score, _ := strconv.Atoi(r.PostForm.Get(fmt.Sprintf("Q%d", i+1)))
		scores = append(scores, score)
	}

	input := orchestrators.SubmitSurveyInput{UserID: sess.AccountID, Type: surveyType, Scores: scores}
	deps := orchestrators.SubmitSurveyDeps{
		Profiles:   stores.ProfileStore,
		Surveys:    stores.SurveyStore,
		GenerateID: generateID,
		Now:        timeNow,
	}

	_, err := orchestrators.ExecuteSubmitSurvey(r.Context(), input, deps)
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	case survey.IsValidationError(err):
		renderDashboard(w, r, sess.AccountID, http.StatusBadRequest, map[string]any{"SurveyError": err.Error()})
	case errors.Is(err, survey.ErrAlreadySubmitted):
		renderDashboard(w, r, sess.AccountID, http.StatusConflict, map[string]any{"SurveyError": err.Error()})
	case errors.Is(err, survey.ErrNotEligible):
		renderDashboard(w, r, sess.AccountID, http.StatusForbidden, map[string]any{"SurveyError": err.Error()})
	default:
		if !errors.Is(err, orchestrators.ErrPersistence) {
			slog.Error("internal_error", "op", "submit_survey", "error", err)
		}
		renderDashboard(w, r, sess.AccountID, http.StatusInternalServerError,
			map[string]any{"SurveyError": orchestrators.ErrPersistence.Error()})
	}
}

// handleCertificate handles GET /certificate and streams the PDF.
func handleCertificate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	content, err := projections.QueryGetCertificate(r.Context(), sess.AccountID, projections.GetCertificateDeps{
		Profiles: stores.ProfileStore,
		Accounts: stores.AccountStore,
		Now:      timeNow,
	})
	if errors.Is(err, projections.ErrCertificateLocked) {
		renderDenied(w, r, err.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := certificate.Render(&buf, content); err != nil {
		internalError(w, err)
		return
	}
	slog.Info("profile_event", "event", "certificate_downloaded", "user_id", sess.AccountID, "status", profile.StatusModulesComplete)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", certificateDomain.Filename))
	w.Write(buf.Bytes())
}
