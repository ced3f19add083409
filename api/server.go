/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a frontend

ROUTE GROUPS:
  /api/employees/*      Employees, their shifts and payroll
  /api/shifts           Shifts across employees
  /api/templates/*      Shift templates
  /api/settings         Overtime rules
  /api/periods/*        Week and biweekly boundaries
  /api/hours            Single shift calculator
  /api/payroll/*        Reports and CSV exports
  /api/scheduler/*      Period-close job
  /api/reset            Database reset (dev only)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. allowedOrigins
// are the CORS origins permitted to call the API.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/shifts", h.ListEmployeeShifts)
			r.Put("/{id}/shifts/{date}", h.PutShift)
			r.Delete("/{id}/shifts/{date}", h.DeleteShift)
			r.Get("/{id}/payroll", h.GetEmployeePayroll)
		})

		// Shift routes
		r.Get("/shifts", h.ListShifts)
		r.Delete("/shifts", h.ClearShifts)

		// Template routes
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Put("/{id}", h.UpdateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
		})

		// Settings routes
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		// Period and calculator routes
		r.Get("/periods/week", h.GetWeek)
		r.Get("/periods/biweekly", h.GetBiweekly)
		r.Get("/hours", h.GetHours)

		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Get("/", h.GetPayroll)
			r.Get("/export.csv", h.ExportPayroll)
			r.Get("/schedule.csv", h.ExportSchedule)
		})

		// Scheduler routes
		r.Get("/scheduler/runs", h.ListRuns)
		r.Post("/scheduler/run", h.TriggerRun)

		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
