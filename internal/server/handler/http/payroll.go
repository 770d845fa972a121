package http

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/atinyakov/GophPayroll/internal/middleware"
	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/payroll"
	"github.com/atinyakov/GophPayroll/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PayrollService defines the payroll operations required by PayrollHandler.
type PayrollService interface {
	Save(ctx context.Context, code string, in service.PayrollInput) (service.Statement, error)
	Get(ctx context.Context, code string) (*models.Payroll, error)
	List(ctx context.Context) ([]service.Statement, error)
	Salary(ctx context.Context, who models.Identity, code string, attendance *int) (payroll.Breakdown, error)
	Payslip(ctx context.Context, who models.Identity, code string, attendance *int) (service.Payslip, error)
}

// PayrollHandler serves /api/payroll.
type PayrollHandler struct {
	PayrollService PayrollService
	Log            *zap.Logger
}

// List handles GET /api/payroll.
func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.PayrollService.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/payroll/{code}.
func (h *PayrollHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.PayrollService.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Save handles POST /api/payroll/{code}. Numeric fields may be sent as
// numbers or strings; anything else counts as zero.
func (h *PayrollHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in service.PayrollInput
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	st, err := h.PayrollService.Save(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Salary handles GET /api/payroll/{code}/salary[?attendance=N].
func (h *PayrollHandler) Salary(w http.ResponseWriter, r *http.Request) {
	who, attendance, ok := h.salaryRequest(w, r)
	if !ok {
		return
	}

	b, err := h.PayrollService.Salary(r.Context(), who, chi.URLParam(r, "code"), attendance)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Payslip handles GET /api/payroll/{code}/payslip[?attendance=N] and answers
// with a plain text attachment.
func (h *PayrollHandler) Payslip(w http.ResponseWriter, r *http.Request) {
	who, attendance, ok := h.salaryRequest(w, r)
	if !ok {
		return
	}

	slip, err := h.PayrollService.Payslip(r.Context(), who, chi.URLParam(r, "code"), attendance)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": slip.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(slip.Body)
}

func (h *PayrollHandler) salaryRequest(w http.ResponseWriter, r *http.Request) (models.Identity, *int, bool) {
	who, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return who, nil, false
	}

	raw := r.URL.Query().Get("attendance")
	if raw == "" {
		return who, nil, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		writeError(w, h.Log, &service.ValidationError{Fields: []string{"attendance"}})
		return who, nil, false
	}
	return who, &days, true
}
