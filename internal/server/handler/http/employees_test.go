package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/service"
	"github.com/go-chi/chi/v5"
)

func employeeRouter(svc EmployeeService) http.Handler {
	h := &EmployeeHandler{EmployeeService: svc}
	r := chi.NewRouter()
	r.Get("/employees", h.List)
	r.Post("/employees", h.Create)
	r.Get("/employees/{code}", h.Get)
	r.Put("/employees/{code}", h.Update)
	r.Delete("/employees/{code}", h.Delete)
	return r
}

func seededEmployees() *fakeEmployeeService {
	return &fakeEmployeeService{employees: map[string]models.Employee{
		"E1": {
			Code:          "E1",
			FullName:      "Ravi Kumar",
			Email:         "ravi@example.com",
			Phone:         "555-0101",
			Department:    "Ops",
			DateOfJoining: time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
}

const newEmployeeBody = `{"empCode":"E2","fullName":"Mira Das","email":"mira@example.com","phone":"555-0102","department":"HR","dateOfJoining":"2023-01-15","attendance":20,"password":"pw"}`

func TestEmployeeHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeEmployeeService
		expectedCode   int
		expectedSubstr string
	}{
		{"created", newEmployeeBody, seededEmployees(), http.StatusCreated, `"empCode":"E2"`},
		{"invalid JSON", `{"empCode":`, seededEmployees(), http.StatusBadRequest, "invalid request"},
		{"bad date", `{"empCode":"E2","dateOfJoining":"15/01/2023"}`, seededEmployees(), http.StatusBadRequest, "dateOfJoining"},
		{"duplicate", newEmployeeBody, &fakeEmployeeService{employees: map[string]models.Employee{}, createErr: service.ErrAlreadyExists}, http.StatusConflict, "already exists"},
		{"validation", `{"empCode":"E3"}`, &fakeEmployeeService{employees: map[string]models.Employee{}, createErr: &service.ValidationError{Fields: []string{"fullName"}}}, http.StatusBadRequest, "fullName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/employees", bytes.NewBufferString(tt.body))

			employeeRouter(tt.service).ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedCode, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestEmployeeHandler_CreateParsesFields(t *testing.T) {
	svc := seededEmployees()
	rec := httptest.NewRecorder()

	employeeRouter(svc).ServeHTTP(rec, httptest.NewRequest("POST", "/employees", bytes.NewBufferString(newEmployeeBody)))

	e := svc.employees["E2"]
	if !e.DateOfJoining.Equal(time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DateOfJoining = %v", e.DateOfJoining)
	}
	if e.Attendance == nil || *e.Attendance != 20 {
		t.Errorf("Attendance = %v; want 20", e.Attendance)
	}
	if svc.gotPassword != "pw" {
		t.Errorf("password = %q; want pw", svc.gotPassword)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("password echoed in response")
	}
}

func TestEmployeeHandler_GetAndList(t *testing.T) {
	router := employeeRouter(seededEmployees())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/employees/E1", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Ravi Kumar") {
		t.Errorf("GET /employees/E1: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/employees/E9", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /employees/E9: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/employees", nil))
	var list []models.Employee
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 1 || list[0].Code != "E1" {
		t.Errorf("list = %+v", list)
	}
}

func TestEmployeeHandler_Update(t *testing.T) {
	svc := seededEmployees()
	router := employeeRouter(svc)
	body := `{"fullName":"Ravi K","email":"ravi@example.com","phone":"1","department":"Ops","dateOfJoining":"2022-07-01T00:00:00Z"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("PUT", "/employees/E1", bytes.NewBufferString(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.employees["E1"].FullName != "Ravi K" {
		t.Errorf("FullName = %q", svc.employees["E1"].FullName)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("PUT", "/employees/E9", bytes.NewBufferString(body)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestEmployeeHandler_Delete(t *testing.T) {
	svc := seededEmployees()
	router := employeeRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/employees/E1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := svc.employees["E1"]; ok {
		t.Error("employee not deleted")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/employees/E1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
