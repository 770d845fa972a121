package http

import (
	"net/http"

	"github.com/atinyakov/GophPayroll/internal/middleware"
	"github.com/atinyakov/GophPayroll/internal/service"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter constructs and returns an HTTP handler that serves the payroll
// API under /api.
//
// Middleware chain (applied in order):
//  1. RequestID and WithRequestLogging: tag and log every request
//  2. Recoverer: turns handler panics into 500
//  3. cors: lets the browser client on allowedOrigins send the session cookie
//  4. AllowContentType("application/json"): rejects non-JSON bodies
//
// Routes behind SessionAuth require a valid session cookie; the admin group
// additionally requires the admin role.
func NewRouter(
	authHandler *AuthHandler,
	employeeHandler *EmployeeHandler,
	payrollHandler *PayrollHandler,
	sessions middleware.IdentityResolver,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessions, service.ErrUnauthenticated))

			r.Get("/me", authHandler.Me)
			r.Get("/users/count", authHandler.CountUsers)

			r.Get("/employees", employeeHandler.List)
			r.Get("/employees/{code}", employeeHandler.Get)

			r.Get("/payroll/{code}/salary", payrollHandler.Salary)
			r.Get("/payroll/{code}/payslip", payrollHandler.Payslip)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/employees", employeeHandler.Create)
				r.Put("/employees/{code}", employeeHandler.Update)
				r.Delete("/employees/{code}", employeeHandler.Delete)

				r.Get("/payroll", payrollHandler.List)
				r.Get("/payroll/{code}", payrollHandler.Get)
				r.Post("/payroll/{code}", payrollHandler.Save)
			})
		})
	})

	return r
}
