// Package store provides Store implementations.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[payroll.EmployeeID]payroll.Employee
	shifts    map[shiftKey]payroll.Shift
	templates map[payroll.TemplateID]payroll.ShiftTemplate
	settings  payroll.Settings

	// FailWith, when set, is returned by every read. Tests use it to
	// simulate a broken backend.
	FailWith error
}

type shiftKey struct {
	EmployeeID payroll.EmployeeID
	Date       string
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[payroll.EmployeeID]payroll.Employee),
		shifts:    make(map[shiftKey]payroll.Shift),
		templates: make(map[payroll.TemplateID]payroll.ShiftTemplate),
		settings:  payroll.DefaultSettings(),
	}
}

func (m *Memory) fail(op string) error {
	if m.FailWith != nil {
		return payroll.ProviderError(op, m.FailWith)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Provider
// -----------------------------------------------------------------------------

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("get employee"); err != nil {
		return nil, err
	}

	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context, activeOnly bool) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("list employees"); err != nil {
		return nil, err
	}

	var result []payroll.Employee
	for _, emp := range m.employees {
		if activeOnly && !emp.IsActive {
			continue
		}
		result = append(result, emp)
	}
	slices.SortFunc(result, func(a, b payroll.Employee) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return result, nil
}

func (m *Memory) ShiftsForEmployee(_ context.Context, id payroll.EmployeeID, from, to payroll.Date) ([]payroll.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("list shifts"); err != nil {
		return nil, err
	}

	span := payroll.Period{Start: from, End: to}
	var result []payroll.Shift
	for k, s := range m.shifts {
		if k.EmployeeID == id && span.Contains(s.Date) {
			result = append(result, s)
		}
	}
	slices.SortFunc(result, byDate)
	return result, nil
}

func (m *Memory) ShiftsInRange(_ context.Context, from, to payroll.Date) ([]payroll.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("list shifts"); err != nil {
		return nil, err
	}

	span := payroll.Period{Start: from, End: to}
	var result []payroll.Shift
	for _, s := range m.shifts {
		if span.Contains(s.Date) {
			result = append(result, s)
		}
	}
	slices.SortFunc(result, func(a, b payroll.Shift) int {
		if n := byDate(a, b); n != 0 {
			return n
		}
		return strings.Compare(m.employees[a.EmployeeID].Name, m.employees[b.EmployeeID].Name)
	})
	return result, nil
}

func (m *Memory) LoadSettings(_ context.Context) (payroll.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("load settings"); err != nil {
		return payroll.Settings{}, err
	}
	return m.settings, nil
}

func byDate(a, b payroll.Shift) int {
	return a.Date.Time.Compare(b.Date.Time)
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

func (m *Memory) SaveEmployee(_ context.Context, emp payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id payroll.EmployeeID, hard bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	emp, ok := m.employees[id]
	if !ok {
		return &payroll.EmployeeNotFoundError{ID: id}
	}
	if !hard {
		emp.IsActive = false
		m.employees[id] = emp
		return nil
	}

	for k := range m.shifts {
		if k.EmployeeID == id {
			delete(m.shifts, k)
		}
	}
	delete(m.employees, id)
	return nil
}

func (m *Memory) SaveShift(_ context.Context, s payroll.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[s.EmployeeID]; !ok {
		return &payroll.EmployeeNotFoundError{ID: s.EmployeeID}
	}
	m.shifts[shiftKey{EmployeeID: s.EmployeeID, Date: s.Date.String()}] = s
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, id payroll.EmployeeID, date payroll.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := shiftKey{EmployeeID: id, Date: date.String()}
	if _, ok := m.shifts[k]; !ok {
		return payroll.ErrShiftNotFound
	}
	delete(m.shifts, k)
	return nil
}

func (m *Memory) ClearShifts(_ context.Context, from, to payroll.Date) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	span := payroll.Period{Start: from, End: to}
	n := 0
	for k, s := range m.shifts {
		if span.Contains(s.Date) {
			delete(m.shifts, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) SaveTemplate(_ context.Context, t payroll.ShiftTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
	return nil
}

func (m *Memory) GetTemplate(_ context.Context, id payroll.TemplateID) (*payroll.ShiftTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Memory) ListTemplates(_ context.Context) ([]payroll.ShiftTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.ShiftTemplate, 0, len(m.templates))
	for _, t := range m.templates {
		result = append(result, t)
	}
	slices.SortFunc(result, func(a, b payroll.ShiftTemplate) int {
		if n := a.Start.Minutes() - b.Start.Minutes(); n != 0 {
			return n
		}
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (m *Memory) DeleteTemplate(_ context.Context, id payroll.TemplateID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return payroll.ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *Memory) SaveSettings(_ context.Context, s payroll.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

func (m *Memory) Close() error { return nil }

var _ payroll.Store = (*Memory)(nil)
