package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/GophPayroll/internal/middleware"
	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/payroll"
	"github.com/atinyakov/GophPayroll/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var employeeIdentity = models.Identity{Email: "ravi@example.com", Role: models.RoleEmployee}

func payrollRouter(svc PayrollService) http.Handler {
	h := &PayrollHandler{PayrollService: svc}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), employeeIdentity)))
		})
	})
	r.Get("/payroll", h.List)
	r.Get("/payroll/{code}", h.Get)
	r.Post("/payroll/{code}", h.Save)
	r.Get("/payroll/{code}/salary", h.Salary)
	r.Get("/payroll/{code}/payslip", h.Payslip)
	return r
}

func TestPayrollHandler_Save(t *testing.T) {
	svc := &fakePayrollService{statement: service.Statement{
		Payroll: models.Payroll{EmployeeCode: "E1", Basic: decimal.NewFromInt(20000)},
		Salary:  payroll.Compute(decimal.NewFromInt(20000), decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.NewFromInt(12), decimal.NewFromInt(10)),
	}}
	rec := httptest.NewRecorder()
	body := `{"basic":"20000","hra":10,"allowance":5.5,"pf":"12","tax":null}`

	payrollRouter(svc).ServeHTTP(rec, httptest.NewRequest("POST", "/payroll/E1", bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.saved.Basic != "20000" {
		t.Errorf("basic = %#v; want the raw string", svc.saved.Basic)
	}
	if n, ok := svc.saved.HRA.(json.Number); !ok || n.String() != "10" {
		t.Errorf("hra = %#v; want json.Number 10", svc.saved.HRA)
	}
	if svc.saved.Tax != nil {
		t.Errorf("tax = %#v; want nil", svc.saved.Tax)
	}
	if !strings.Contains(rec.Body.String(), "18600") {
		t.Errorf("response lacks net salary: %s", rec.Body.String())
	}
}

func TestPayrollHandler_SaveErrors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakePayrollService
		expectedCode int
	}{
		{"invalid JSON", `[1,`, &fakePayrollService{}, http.StatusBadRequest},
		{"unknown employee", `{"basic":1}`, &fakePayrollService{saveErr: service.ErrNotFound}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			payrollRouter(tt.service).ServeHTTP(rec, httptest.NewRequest("POST", "/payroll/E9", bytes.NewBufferString(tt.body)))
			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}

func TestPayrollHandler_ListAndGet(t *testing.T) {
	svc := &fakePayrollService{statement: service.Statement{Payroll: models.Payroll{EmployeeCode: "E1"}}}
	router := payrollRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/payroll", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"salary"`) {
		t.Errorf("GET /payroll: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/payroll/E1", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"empCode":"E1"`) {
		t.Errorf("GET /payroll/E1: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPayrollHandler_Salary(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		expectedCode   int
		wantAttendance *int
	}{
		{name: "plain", expectedCode: http.StatusOK},
		{name: "prorated", query: "?attendance=20", expectedCode: http.StatusOK, wantAttendance: intPtr(20)},
		{name: "bad attendance", query: "?attendance=abc", expectedCode: http.StatusBadRequest},
		{name: "negative attendance", query: "?attendance=-2", expectedCode: http.StatusBadRequest},
		{name: "forbidden", err: service.ErrForbidden, expectedCode: http.StatusForbidden},
		{name: "missing", err: service.ErrNotFound, expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePayrollService{err: tt.err}
			rec := httptest.NewRecorder()

			payrollRouter(svc).ServeHTTP(rec, httptest.NewRequest("GET", "/payroll/E1/salary"+tt.query, nil))

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if tt.expectedCode != http.StatusOK || tt.err != nil {
				return
			}
			if svc.gotWho != employeeIdentity {
				t.Errorf("who = %+v", svc.gotWho)
			}
			switch {
			case tt.wantAttendance == nil && svc.gotAttendance != nil:
				t.Errorf("attendance = %d; want nil", *svc.gotAttendance)
			case tt.wantAttendance != nil && (svc.gotAttendance == nil || *svc.gotAttendance != *tt.wantAttendance):
				t.Errorf("attendance = %v; want %d", svc.gotAttendance, *tt.wantAttendance)
			}
		})
	}
}

func TestPayrollHandler_Payslip(t *testing.T) {
	svc := &fakePayrollService{slip: service.Payslip{Filename: "Ravi Kumar_payslip.txt", Body: []byte("Payslip for Ravi Kumar\n")}}
	rec := httptest.NewRecorder()

	payrollRouter(svc).ServeHTTP(rec, httptest.NewRequest("GET", "/payroll/E1/payslip", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Ravi Kumar_payslip.txt"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != "Payslip for Ravi Kumar\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func intPtr(v int) *int { return &v }
