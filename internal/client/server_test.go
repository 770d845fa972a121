package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/payroll"
	"github.com/atinyakov/GophPayroll/internal/service"
	"github.com/shopspring/decimal"
)

const testCookie = "payroll_sid"

// newFakeServer serves a small subset of the payroll API. Every route except
// login and register requires the cookie set by login.
func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	employees := map[string]models.Employee{
		"E1": {
			Code:          "E1",
			FullName:      "Ravi Kumar",
			Email:         "ravi@example.com",
			Department:    "Ops",
			DateOfJoining: time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	params := models.Payroll{
		EmployeeCode: "E1",
		Basic:        decimal.NewFromInt(20000),
		HRA:          decimal.NewFromInt(10),
		Allowance:    decimal.NewFromInt(5),
		PF:           decimal.NewFromInt(12),
		Tax:          decimal.NewFromInt(10),
	}

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(testCookie); err != nil || c.Value != "tok" {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{"msg": "user registered"})
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "pw" {
			http.Error(w, "invalid credentials", http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: testCookie, Value: "tok", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, Session{Msg: "login successful", Email: req["email"], Role: "admin"})
	})
	mux.HandleFunc("GET /api/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: testCookie, Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"msg": "logged out"})
	})
	mux.HandleFunc("GET /api/me", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Session{Email: "root@example.com", Role: "admin"})
	}))
	mux.HandleFunc("GET /api/users/count", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int64{"count": 3})
	}))
	mux.HandleFunc("GET /api/employees", authed(func(w http.ResponseWriter, r *http.Request) {
		list := []models.Employee{}
		for _, e := range employees {
			list = append(list, e)
		}
		writeJSON(w, http.StatusOK, list)
	}))
	mux.HandleFunc("POST /api/employees", authed(func(w http.ResponseWriter, r *http.Request) {
		var in EmployeeInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		e := models.Employee{Code: in.Code, FullName: in.FullName, Email: in.Email}
		employees[in.Code] = e
		writeJSON(w, http.StatusCreated, e)
	}))
	mux.HandleFunc("DELETE /api/employees/{code}", authed(func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		if _, ok := employees[code]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		delete(employees, code)
		writeJSON(w, http.StatusOK, map[string]string{"msg": "employee deleted"})
	}))
	mux.HandleFunc("POST /api/payroll/{code}", authed(func(w http.ResponseWriter, r *http.Request) {
		var in service.PayrollInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		p := models.Payroll{
			EmployeeCode: r.PathValue("code"),
			Basic:        payroll.Coerce(in.Basic),
			HRA:          payroll.Coerce(in.HRA),
			Allowance:    payroll.Coerce(in.Allowance),
			PF:           payroll.Coerce(in.PF),
			Tax:          payroll.Coerce(in.Tax),
		}
		writeJSON(w, http.StatusOK, service.Statement{Payroll: p, Salary: payroll.ComputeFor(p)})
	}))
	mux.HandleFunc("GET /api/payroll/{code}/salary", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("attendance") == "13" {
			writeJSON(w, http.StatusOK, payroll.ComputeProrated(params, 13))
			return
		}
		writeJSON(w, http.StatusOK, payroll.ComputeFor(params))
	}))
	mux.HandleFunc("GET /api/payroll/{code}/payslip", authed(func(w http.ResponseWriter, r *http.Request) {
		e := employees["E1"]
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="Ravi Kumar_payslip.txt"`)
		_, _ = w.Write(payroll.RenderPayslip(e, params, payroll.ComputeFor(params)))
	}))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestAPI(t *testing.T) *API {
	t.Helper()
	client, err := NewHTTPClient("")
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return NewAPI(client, newFakeServer(t).URL+"/")
}
