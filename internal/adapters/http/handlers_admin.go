package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"playbook/internal/adapters/http/middleware"
	"playbook/internal/application/orchestrators"
	"playbook/internal/application/projections"
	"playbook/internal/domain/role"
	"playbook/internal/domain/seat"
)

// recentCodesLimit bounds the access codes listed on the admin page.
const recentCodesLimit = 20

const deniedMessage = "access denied. this page is restricted to administrators."

func adminReport(r *http.Request, userID string) (projections.AdminReport, error) {
	return projections.QueryGetAdminReport(r.Context(), projections.GetAdminReportQuery{UserID: userID},
		projections.GetAdminReportDeps{Roles: stores.RoleStore, Reports: stores.ReportStore})
}

// handleAdminDashboard handles GET /admin-dashboard
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	result, err := adminReport(r, sess.AccountID)
	if errors.Is(err, role.ErrAccessDenied) {
		renderDenied(w, r, deniedMessage)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	codes, err := stores.SeatStore.ListCodes(r.Context(), recentCodesLimit)
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "admin_dashboard.html", map[string]any{
		"Report": result,
		"Codes":  codes,
	})
}

// handleAdminExport handles GET /admin-dashboard/export and streams the XLSX report.
func handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	result, err := adminReport(r, sess.AccountID)
	if errors.Is(err, role.ErrAccessDenied) {
		renderDenied(w, r, deniedMessage)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := projections.WriteReportWorkbook(&buf, result, timeNow()); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", projections.ExportFilename))
	w.Write(buf.Bytes())
}

// accessCodeRequest is the JSON body of POST /api/admin/access-codes.
type accessCodeRequest struct {
	Count int `json:"count"`
}

// accessCodeResponse lists freshly generated codes.
type accessCodeResponse struct {
	Codes []string `json:"codes"`
}

// handleAccessCodes handles POST /api/admin/access-codes
func handleAccessCodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req accessCodeRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	codes, err := orchestrators.ExecuteGenerateAccessCodes(r.Context(), orchestrators.GenerateAccessCodesInput{
		ActorID: sess.AccountID,
		Count:   req.Count,
	}, orchestrators.AccessCodeDeps{Roles: stores.RoleStore, Seats: stores.SeatStore, Now: timeNow})
	switch {
	case errors.Is(err, role.ErrAccessDenied):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case errors.Is(err, seat.ErrInvalidBatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	resp := accessCodeResponse{Codes: make([]string, 0, len(codes))}
	for _, c := range codes {
		resp.Codes = append(resp.Codes, c.Code)
	}
	writeJSON(w, http.StatusCreated, resp)
}
