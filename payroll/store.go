/*
store.go - Storage collaborator interfaces

PURPOSE:
  The engine only reads: an employee by ID, the employee list, shifts in a
  date range, and the current settings. Provider is that read surface.
  Store adds the writes the HTTP API needs for data entry.

CONVENTIONS:
  - A missing employee or template is (nil, nil), not an error. Callers
    decide whether absence is a failure.
  - Backend failures come back as *DataProviderError.
  - Shift lists are ordered by date (then employee name for range queries).
  - No transactional isolation is promised beyond what the backend gives;
    the engine takes point-in-time reads and does not re-check them.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go: SQLite (default)
  - store/postgres/postgres.go: PostgreSQL through gorm
*/
package payroll

import "context"

// Provider is the read side the calculator depends on.
type Provider interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ListEmployees returns employees ordered by name.
	ListEmployees(ctx context.Context, activeOnly bool) ([]Employee, error)

	// ShiftsForEmployee returns one employee's shifts in [from, to].
	ShiftsForEmployee(ctx context.Context, id EmployeeID, from, to Date) ([]Shift, error)

	// ShiftsInRange returns every employee's shifts in [from, to].
	ShiftsInRange(ctx context.Context, from, to Date) ([]Shift, error)

	LoadSettings(ctx context.Context) (Settings, error)
}

// Store is the full record store behind the API.
type Store interface {
	Provider

	SaveEmployee(ctx context.Context, emp Employee) error
	// DeleteEmployee deactivates the employee, or with hard removes the
	// employee together with all their shifts.
	DeleteEmployee(ctx context.Context, id EmployeeID, hard bool) error

	// SaveShift inserts or replaces the shift for (EmployeeID, Date).
	SaveShift(ctx context.Context, shift Shift) error
	DeleteShift(ctx context.Context, id EmployeeID, date Date) error
	// ClearShifts deletes all shifts in [from, to] and reports how many.
	ClearShifts(ctx context.Context, from, to Date) (int, error)

	SaveTemplate(ctx context.Context, t ShiftTemplate) error
	GetTemplate(ctx context.Context, id TemplateID) (*ShiftTemplate, error)
	// ListTemplates returns templates ordered by start time.
	ListTemplates(ctx context.Context) ([]ShiftTemplate, error)
	DeleteTemplate(ctx context.Context, id TemplateID) error

	SaveSettings(ctx context.Context, s Settings) error

	Close() error
}
