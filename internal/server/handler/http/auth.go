// Package http provides the HTTP handlers and router of the payroll API.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/atinyakov/GophPayroll/internal/middleware"
	"github.com/atinyakov/GophPayroll/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the authentication operations required by AuthHandler.
type AuthService interface {
	// Register creates an employee credential.
	Register(ctx context.Context, email, password string) error
	// Authenticate checks credentials and opens a session.
	Authenticate(ctx context.Context, email, password string) (service.AuthResult, error)
	// Logout destroys the session behind token.
	Logout(ctx context.Context, token string) error
	// CountUsers returns the number of registered credentials.
	CountUsers(ctx context.Context) (int64, error)
}

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	AuthService AuthService
	// SessionTTL is the max-age of the session cookie.
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure; set when serving HTTPS.
	SecureCookie bool
	Log          *zap.Logger
}

// Credentials is the JSON payload of register and login requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Msg   string `json:"msg"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.AuthService.Register(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, message{Msg: "user registered"})
}

// Login handles POST /api/login. On success the session token is set as an
// HttpOnly cookie and never appears in the body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.AuthService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, LoginResponse{
		Msg:   "login successful",
		Email: res.Identity.Email,
		Role:  string(res.Identity.Role),
	})
}

// Logout handles GET /api/logout. It succeeds even without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.AuthService.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, h.Log, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, message{Msg: "logged out"})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// CountUsers handles GET /api/users/count.
func (h *AuthHandler) CountUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.AuthService.CountUsers(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}
