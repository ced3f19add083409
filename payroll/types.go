/*
Package payroll computes pay from recorded work shifts.

PURPOSE:
  Turns per-day clock-in/clock-out/lunch intervals into regular and overtime
  hours, applies the daily and weekly overtime rules, and prices the result
  for one employee or for every active employee over a date range.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee, Shift, ShiftTemplate: records supplied by a Provider
  - Settings: overtime rules, passed explicitly into every calculation
  - DailyHours, EmployeePayroll, Report: derived, never persisted

DESIGN PRINCIPLES:
  1. Precision: hours and money are decimal.Decimal, rounded to 2 places
  2. Explicit inputs: no calculation reads global state
  3. Derived values are built once and not mutated afterwards

SEE ALSO:
  - hours.go: shift arithmetic and the overtime allocators
  - period.go: week and biweekly boundaries
  - calculator.go: per-employee payroll and report aggregation
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type TemplateID string

// =============================================================================
// RECORDS - Supplied by the storage collaborator
// =============================================================================

// Employee is a payable person. Only active employees appear in reports,
// but payroll can be computed for an inactive one by ID.
type Employee struct {
	ID         EmployeeID
	Name       string
	HourlyRate decimal.Decimal
	IsActive   bool
}

// LunchBreak is an unpaid interval inside a shift.
// Lunch is either fully present or absent, never half-specified.
type LunchBreak struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Minutes returns the break length. A break ending at or before its start
// is worth zero minutes.
func (l LunchBreak) Minutes() int {
	if d := l.End.Minutes() - l.Start.Minutes(); d > 0 {
		return d
	}
	return 0
}

// Shift is one employee's work on one calendar day.
// At most one Shift exists per (EmployeeID, Date). End earlier than Start
// means the shift runs past midnight.
type Shift struct {
	EmployeeID EmployeeID
	Date       Date
	Start      TimeOfDay
	End        TimeOfDay
	Lunch      *LunchBreak
	TemplateID TemplateID
}

// Hours is the paid length of the shift.
func (s Shift) Hours() decimal.Decimal {
	return ShiftHours(s.Start, s.End, s.Lunch)
}

// ShiftTemplate is a reusable shift shape.
type ShiftTemplate struct {
	ID    TemplateID
	Name  string
	Start TimeOfDay
	End   TimeOfDay
	Lunch *LunchBreak
}

func (t ShiftTemplate) Hours() decimal.Decimal {
	return ShiftHours(t.Start, t.End, t.Lunch)
}

// Apply stamps the template onto a day for an employee.
func (t ShiftTemplate) Apply(employeeID EmployeeID, date Date) Shift {
	var lunch *LunchBreak
	if t.Lunch != nil {
		l := *t.Lunch
		lunch = &l
	}
	return Shift{
		EmployeeID: employeeID,
		Date:       date,
		Start:      t.Start,
		End:        t.End,
		Lunch:      lunch,
		TemplateID: t.ID,
	}
}

// =============================================================================
// DERIVED RESULTS
// =============================================================================

// DailyHours is one calendar day of an employee's payroll, including days
// with no shift.
type DailyHours struct {
	Date          Date
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	TotalHours    decimal.Decimal
}

// EmployeePayroll is the priced result for one employee over a period.
type EmployeePayroll struct {
	EmployeeID         EmployeeID
	EmployeeName       string
	HourlyRate         decimal.Decimal
	Days               []DailyHours // chronological
	TotalRegularHours  decimal.Decimal
	TotalOvertimeHours decimal.Decimal
	TotalHours         decimal.Decimal
	RegularPay         decimal.Decimal
	OvertimePay        decimal.Decimal
	TotalPay           decimal.Decimal
}

// Summary holds organisation-wide totals of a report.
type Summary struct {
	TotalEmployees     int
	TotalRegularHours  decimal.Decimal
	TotalOvertimeHours decimal.Decimal
	TotalHours         decimal.Decimal
	TotalRegularPay    decimal.Decimal
	TotalOvertimePay   decimal.Decimal
	TotalPay           decimal.Decimal
}

// SkippedEmployee records an employee left out of a report computed with
// WithSkipFailures.
type SkippedEmployee struct {
	ID     EmployeeID
	Name   string
	Reason string
}

// Report is the payroll for every active employee over a period.
type Report struct {
	Period    Period
	Employees []EmployeePayroll
	Summary   Summary
	Settings  Settings
	Skipped   []SkippedEmployee
}

// round2 is the single rounding rule of the engine: two places, half away
// from zero.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
