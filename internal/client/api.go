package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/payroll"
	"github.com/atinyakov/GophPayroll/internal/service"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// API is a typed client of the payroll HTTP API.
type API struct {
	client  *http.Client
	baseURL string
}

// NewAPI returns an API client rooted at baseURL. client should carry a
// cookie jar (see NewHTTPClient).
func NewAPI(client *http.Client, baseURL string) *API {
	return &API{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Register creates an employee login.
func (a *API) Register(ctx context.Context, email, password string) error {
	return a.do(ctx, http.MethodPost, "/api/register", map[string]string{"email": email, "password": password}, nil)
}

// Login opens a session; the cookie is kept by the client's jar.
func (a *API) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, &s)
	return s, err
}

// Logout closes the current session.
func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodGet, "/api/logout", nil, nil)
}

// Me returns the identity of the current session.
func (a *API) Me(ctx context.Context) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodGet, "/api/me", nil, &s)
	return s, err
}

// CountUsers returns the number of registered users.
func (a *API) CountUsers(ctx context.Context) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	err := a.do(ctx, http.MethodGet, "/api/users/count", nil, &resp)
	return resp.Count, err
}

// Employees lists all employees.
func (a *API) Employees(ctx context.Context) ([]models.Employee, error) {
	var list []models.Employee
	err := a.do(ctx, http.MethodGet, "/api/employees", nil, &list)
	return list, err
}

// CreateEmployee adds an employee.
func (a *API) CreateEmployee(ctx context.Context, in EmployeeInput) (models.Employee, error) {
	var e models.Employee
	err := a.do(ctx, http.MethodPost, "/api/employees", in, &e)
	return e, err
}

// DeleteEmployee removes an employee with its payroll and login.
func (a *API) DeleteEmployee(ctx context.Context, code string) error {
	return a.do(ctx, http.MethodDelete, "/api/employees/"+url.PathEscape(code), nil, nil)
}

// SavePayroll stores the payroll parameters of an employee.
func (a *API) SavePayroll(ctx context.Context, code string, in PayrollInput) (service.Statement, error) {
	var st service.Statement
	err := a.do(ctx, http.MethodPost, "/api/payroll/"+url.PathEscape(code), in, &st)
	return st, err
}

// Salary returns the salary breakdown of an employee, pro-rated when
// attendance is not nil.
func (a *API) Salary(ctx context.Context, code string, attendance *int) (payroll.Breakdown, error) {
	var b payroll.Breakdown
	err := a.do(ctx, http.MethodGet, payrollPath(code, "salary", attendance), nil, &b)
	return b, err
}

// Payslip downloads the payslip of an employee and returns its file name and content.
func (a *API) Payslip(ctx context.Context, code string, attendance *int) (string, []byte, error) {
	resp, err := a.send(ctx, http.MethodGet, payrollPath(code, "payslip", attendance), nil)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read payslip: %w", err)
	}

	name := code + "_payslip.txt"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return name, body, nil
}

func payrollPath(code, what string, attendance *int) string {
	p := "/api/payroll/" + url.PathEscape(code) + "/" + what
	if attendance != nil {
		p += "?attendance=" + strconv.Itoa(*attendance)
	}
	return p
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := a.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs the request and turns non-2xx answers into *APIError.
func (a *API) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return resp, nil
}
