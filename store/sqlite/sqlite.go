/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Persists employees, shifts, shift templates and overtime settings. The
  payroll engine reads through the payroll.Provider half; the HTTP API
  writes through the rest.

KEY TABLES:
  employees:       id, name, hourly_rate (decimal text), is_active
  shifts:          one row per (employee_id, shift_date), times as "HH:MM"
  shift_templates: reusable shift shapes
  settings:        key/value overtime rules, seeded with defaults

INDEXES:
  - UNIQUE(employee_id, shift_date): at most one shift per employee per day
  - idx_shifts_date: range queries for reports and the schedule grid

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and a single connection so that
  ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calc := payroll.NewCalculator(store)

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
  - store/postgres/postgres.go: PostgreSQL implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema and seeds default settings.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		hourly_rate TEXT NOT NULL DEFAULT '10',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_active_name
		ON employees(is_active, name);

	CREATE TABLE IF NOT EXISTS shift_templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		lunch_start TEXT,
		lunch_end TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		employee_id TEXT NOT NULL REFERENCES employees(id),
		shift_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		lunch_start TEXT,
		lunch_end TEXT,
		template_id TEXT,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, shift_date)
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_date
		ON shifts(shift_date);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	for key, value := range payroll.DefaultSettings().ToMap() {
		if _, err := s.db.Exec("INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = "id, name, hourly_rate, is_active"

// GetEmployee retrieves an employee by ID. Returns nil, nil if missing.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, payroll.ProviderError("get employee", err)
	}
	return &emp, nil
}

// ListEmployees returns employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context, activeOnly bool) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + employeeColumns + " FROM employees"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, payroll.ProviderError("list employees", err)
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, payroll.ProviderError("list employees", err)
		}
		employees = append(employees, emp)
	}
	return employees, payroll.ProviderError("list employees", rows.Err())
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, hourly_rate, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hourly_rate = excluded.hourly_rate,
			is_active = excluded.is_active
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.HourlyRate.String(), emp.IsActive,
		time.Now().UTC().Format(time.RFC3339),
	)
	return payroll.ProviderError("save employee", err)
}

// DeleteEmployee deactivates an employee, or with hard deletes the employee
// and all their shifts.
func (s *Store) DeleteEmployee(ctx context.Context, id payroll.EmployeeID, hard bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !hard {
		res, err := s.db.ExecContext(ctx, "UPDATE employees SET is_active = 0 WHERE id = ?", id)
		if err != nil {
			return payroll.ProviderError("deactivate employee", err)
		}
		return requireAffected(res, &payroll.EmployeeNotFoundError{ID: id})
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return payroll.ProviderError("delete employee", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM shifts WHERE employee_id = ?", id); err != nil {
		return payroll.ProviderError("delete employee shifts", err)
	}
	res, err := sqlTx.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return payroll.ProviderError("delete employee", err)
	}
	if err := requireAffected(res, &payroll.EmployeeNotFoundError{ID: id}); err != nil {
		return err
	}
	return payroll.ProviderError("delete employee", sqlTx.Commit())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (payroll.Employee, error) {
	var (
		emp  payroll.Employee
		rate string
	)
	if err := row.Scan(&emp.ID, &emp.Name, &rate, &emp.IsActive); err != nil {
		return emp, err
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return emp, fmt.Errorf("employee %s: bad hourly_rate %q: %w", emp.ID, rate, err)
	}
	emp.HourlyRate = d
	return emp, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

const shiftColumns = "s.employee_id, s.shift_date, s.start_time, s.end_time, s.lunch_start, s.lunch_end, s.template_id"

// ShiftsForEmployee returns one employee's shifts in [from, to] by date.
func (s *Store) ShiftsForEmployee(ctx context.Context, id payroll.EmployeeID, from, to payroll.Date) ([]payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts s
		WHERE s.employee_id = ? AND s.shift_date BETWEEN ? AND ?
		ORDER BY s.shift_date
	`
	return s.queryShifts(ctx, query, id, from.String(), to.String())
}

// ShiftsInRange returns all shifts in [from, to] by date, then employee name.
func (s *Store) ShiftsInRange(ctx context.Context, from, to payroll.Date) ([]payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts s
		JOIN employees e ON s.employee_id = e.id
		WHERE s.shift_date BETWEEN ? AND ?
		ORDER BY s.shift_date, e.name
	`
	return s.queryShifts(ctx, query, from.String(), to.String())
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]payroll.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, payroll.ProviderError("list shifts", err)
	}
	defer rows.Close()

	var shifts []payroll.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, payroll.ProviderError("list shifts", rows.Err())
}

func scanShift(row scanner) (payroll.Shift, error) {
	var (
		shift                 payroll.Shift
		shiftDate, start, end string
		lunchStart, lunchEnd  sql.NullString
		templateID            sql.NullString
	)
	if err := row.Scan(&shift.EmployeeID, &shiftDate, &start, &end, &lunchStart, &lunchEnd, &templateID); err != nil {
		return shift, payroll.ProviderError("scan shift", err)
	}

	var err error
	if shift.Date, err = payroll.ParseDate(shiftDate); err != nil {
		return shift, err
	}
	if shift.Start, err = payroll.ParseTimeOfDay(start); err != nil {
		return shift, err
	}
	if shift.End, err = payroll.ParseTimeOfDay(end); err != nil {
		return shift, err
	}
	if shift.Lunch, err = payroll.ParseLunch(lunchStart.String, lunchEnd.String); err != nil {
		return shift, err
	}
	shift.TemplateID = payroll.TemplateID(templateID.String)
	return shift, nil
}

// SaveShift inserts or replaces the shift for (employee, date).
func (s *Store) SaveShift(ctx context.Context, shift payroll.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lunchStart, lunchEnd := lunchColumns(shift.Lunch)
	query := `
		INSERT INTO shifts (employee_id, shift_date, start_time, end_time, lunch_start, lunch_end, template_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, shift_date) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			lunch_start = excluded.lunch_start,
			lunch_end = excluded.lunch_end,
			template_id = excluded.template_id,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		shift.EmployeeID, shift.Date.String(), shift.Start.String(), shift.End.String(),
		lunchStart, lunchEnd, nullString(string(shift.TemplateID)),
		time.Now().UTC().Format(time.RFC3339),
	)
	if isForeignKeyError(err) {
		return &payroll.EmployeeNotFoundError{ID: shift.EmployeeID}
	}
	return payroll.ProviderError("save shift", err)
}

// DeleteShift removes the shift for (employee, date).
func (s *Store) DeleteShift(ctx context.Context, id payroll.EmployeeID, date payroll.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE employee_id = ? AND shift_date = ?", id, date.String())
	if err != nil {
		return payroll.ProviderError("delete shift", err)
	}
	return requireAffected(res, payroll.ErrShiftNotFound)
}

// ClearShifts deletes every shift in [from, to].
func (s *Store) ClearShifts(ctx context.Context, from, to payroll.Date) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE shift_date BETWEEN ? AND ?", from.String(), to.String())
	if err != nil {
		return 0, payroll.ProviderError("clear shifts", err)
	}
	n, err := res.RowsAffected()
	return int(n), payroll.ProviderError("clear shifts", err)
}

// =============================================================================
// SHIFT TEMPLATES
// =============================================================================

const templateColumns = "id, name, start_time, end_time, lunch_start, lunch_end"

// SaveTemplate inserts or updates a template.
func (s *Store) SaveTemplate(ctx context.Context, t payroll.ShiftTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lunchStart, lunchEnd := lunchColumns(t.Lunch)
	query := `
		INSERT INTO shift_templates (id, name, start_time, end_time, lunch_start, lunch_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			lunch_start = excluded.lunch_start,
			lunch_end = excluded.lunch_end
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Start.String(), t.End.String(), lunchStart, lunchEnd,
		time.Now().UTC().Format(time.RFC3339),
	)
	return payroll.ProviderError("save template", err)
}

// GetTemplate retrieves a template by ID. Returns nil, nil if missing.
func (s *Store) GetTemplate(ctx context.Context, id payroll.TemplateID) (*payroll.ShiftTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM shift_templates WHERE id = ?", id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns all templates ordered by start time.
func (s *Store) ListTemplates(ctx context.Context) ([]payroll.ShiftTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+templateColumns+" FROM shift_templates ORDER BY start_time, name")
	if err != nil {
		return nil, payroll.ProviderError("list templates", err)
	}
	defer rows.Close()

	var templates []payroll.ShiftTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, payroll.ProviderError("list templates", rows.Err())
}

// DeleteTemplate removes a template. Shifts created from it keep their times.
func (s *Store) DeleteTemplate(ctx context.Context, id payroll.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shift_templates WHERE id = ?", id)
	if err != nil {
		return payroll.ProviderError("delete template", err)
	}
	return requireAffected(res, payroll.ErrTemplateNotFound)
}

func scanTemplate(row scanner) (payroll.ShiftTemplate, error) {
	var (
		t                    payroll.ShiftTemplate
		start, end           string
		lunchStart, lunchEnd sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &start, &end, &lunchStart, &lunchEnd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, payroll.ProviderError("scan template", err)
	}

	var err error
	if t.Start, err = payroll.ParseTimeOfDay(start); err != nil {
		return t, err
	}
	if t.End, err = payroll.ParseTimeOfDay(end); err != nil {
		return t, err
	}
	t.Lunch, err = payroll.ParseLunch(lunchStart.String, lunchEnd.String)
	return t, err
}

// =============================================================================
// SETTINGS
// =============================================================================

// LoadSettings reads the current overtime settings.
func (s *Store) LoadSettings(ctx context.Context) (payroll.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return payroll.Settings{}, payroll.ProviderError("load settings", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return payroll.Settings{}, payroll.ProviderError("load settings", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return payroll.Settings{}, payroll.ProviderError("load settings", err)
	}
	return payroll.SettingsFromMap(values)
}

// SaveSettings validates and writes all settings atomically.
func (s *Store) SaveSettings(ctx context.Context, settings payroll.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return payroll.ProviderError("save settings", err)
	}
	defer sqlTx.Rollback()

	for key, value := range settings.ToMap() {
		if _, err := sqlTx.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return payroll.ProviderError("save settings", err)
		}
	}
	return payroll.ProviderError("save settings", sqlTx.Commit())
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data and restores default settings (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"shifts", "shift_templates", "employees", "settings"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return payroll.ProviderError("reset", err)
		}
	}
	for key, value := range payroll.DefaultSettings().ToMap() {
		if _, err := s.db.ExecContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return payroll.ProviderError("reset", err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func lunchColumns(l *payroll.LunchBreak) (sql.NullString, sql.NullString) {
	if l == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return nullString(l.Start.String()), nullString(l.End.String())
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return payroll.ProviderError("rows affected", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

var _ payroll.Store = (*Store)(nil)
