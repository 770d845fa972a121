package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EmployeeService defines the employee operations required by EmployeeHandler.
type EmployeeService interface {
	Create(ctx context.Context, e models.Employee, password string) error
	Get(ctx context.Context, code string) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	Update(ctx context.Context, code string, e models.Employee) error
	Delete(ctx context.Context, code string) error
}

// EmployeeHandler serves /api/employees.
type EmployeeHandler struct {
	EmployeeService EmployeeService
	Log             *zap.Logger
}

// EmployeeRequest is the JSON body of create and update requests.
// DateOfJoining accepts 2006-01-02 or RFC 3339.
type EmployeeRequest struct {
	Code          string `json:"empCode"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Department    string `json:"department"`
	DateOfJoining string `json:"dateOfJoining"`
	Attendance    *int   `json:"attendance"`
	// Password, when set on create, gives the employee a login.
	Password string `json:"password,omitempty"`
}

func (req EmployeeRequest) toModel() (models.Employee, error) {
	e := models.Employee{
		Code:       req.Code,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Attendance: req.Attendance,
	}
	if req.DateOfJoining == "" {
		return e, nil
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, req.DateOfJoining); err == nil {
			e.DateOfJoining = t
			return e, nil
		}
	}
	return e, &service.ValidationError{Fields: []string{"dateOfJoining"}}
}

func decodeEmployee(r *http.Request) (EmployeeRequest, models.Employee, error) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, models.Employee{}, err
	}
	e, err := req.toModel()
	return req, e, err
}

// List handles GET /api/employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.EmployeeService.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/employees/{code}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.EmployeeService.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Create handles POST /api/employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, e, err := decodeEmployee(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	if err := h.EmployeeService.Create(r.Context(), e, req.Password); err != nil {
		writeError(w, h.Log, err)
		return
	}

	created, err := h.EmployeeService.Get(r.Context(), e.Code)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/employees/{code}.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	_, e, err := decodeEmployee(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	if err := h.EmployeeService.Update(r.Context(), code, e); err != nil {
		writeError(w, h.Log, err)
		return
	}

	updated, err := h.EmployeeService.Get(r.Context(), code)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/employees/{code}.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.EmployeeService.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Msg: "employee deleted"})
}

func (h *EmployeeHandler) badRequest(w http.ResponseWriter, err error) {
	if _, ok := err.(*service.ValidationError); ok {
		writeError(w, h.Log, err)
		return
	}
	http.Error(w, "invalid request", http.StatusBadRequest)
}
