package payroll

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// CALCULATOR - Per-employee payroll and report aggregation
// =============================================================================

// Calculator prices shifts read from a Provider. It holds no state between
// calls; every report reads employees, shifts and settings afresh.
type Calculator struct {
	provider     Provider
	logger       *zap.Logger
	skipFailures bool
}

type Option func(*Calculator)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSkipFailures lets Report leave out an employee whose payroll fails
// instead of aborting. Failures reading settings or the employee list still
// abort.
func WithSkipFailures() Option {
	return func(c *Calculator) { c.skipFailures = true }
}

func NewCalculator(provider Provider, opts ...Option) *Calculator {
	c := &Calculator{provider: provider, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EmployeePayroll computes one employee's payroll over period using the given
// settings. The active flag is ignored. An unknown ID fails with
// ErrEmployeeNotFound.
func (c *Calculator) EmployeePayroll(ctx context.Context, id EmployeeID, period Period, settings Settings) (EmployeePayroll, error) {
	if _, err := NewPeriod(period.Start, period.End); err != nil {
		return EmployeePayroll{}, err
	}

	emp, err := c.provider.GetEmployee(ctx, id)
	if err != nil {
		return EmployeePayroll{}, ProviderError("get employee", err)
	}
	if emp == nil {
		return EmployeePayroll{}, &EmployeeNotFoundError{ID: id}
	}

	shifts, err := c.provider.ShiftsForEmployee(ctx, id, period.Start, period.End)
	if err != nil {
		return EmployeePayroll{}, ProviderError("list shifts", err)
	}

	result := Compute(*emp, shifts, period, settings)
	c.logger.Debug("employee payroll computed",
		zap.String("employee_id", string(id)),
		zap.Stringer("period", period),
		zap.Int("shifts", len(shifts)),
		zap.String("total_pay", result.TotalPay.StringFixed(2)),
	)
	return result, nil
}

// Report computes payroll for every active employee over period, using the
// settings current at call time. Employees are ordered by name, then ID.
// By default the first failing employee aborts the report.
func (c *Calculator) Report(ctx context.Context, period Period) (Report, error) {
	if _, err := NewPeriod(period.Start, period.End); err != nil {
		return Report{}, err
	}

	settings, err := c.provider.LoadSettings(ctx)
	if err != nil {
		return Report{}, ProviderError("load settings", err)
	}

	employees, err := c.provider.ListEmployees(ctx, true)
	if err != nil {
		return Report{}, ProviderError("list employees", err)
	}
	slices.SortStableFunc(employees, func(a, b Employee) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})

	report := Report{
		Period:    period,
		Employees: make([]EmployeePayroll, 0, len(employees)),
		Settings:  settings,
	}
	for _, emp := range employees {
		ep, err := c.EmployeePayroll(ctx, emp.ID, period, settings)
		if err != nil {
			if !c.skipFailures || ctx.Err() != nil {
				return Report{}, fmt.Errorf("payroll for employee %s: %w", emp.ID, err)
			}
			c.logger.Warn("employee skipped in report",
				zap.String("employee_id", string(emp.ID)),
				zap.Error(err),
			)
			report.Skipped = append(report.Skipped, SkippedEmployee{ID: emp.ID, Name: emp.Name, Reason: err.Error()})
			continue
		}
		report.Employees = append(report.Employees, ep)
	}
	report.Summary = Summarize(report.Employees)

	c.logger.Info("payroll report generated",
		zap.Stringer("period", period),
		zap.Int("employees", report.Summary.TotalEmployees),
		zap.Int("skipped", len(report.Skipped)),
		zap.String("total_pay", report.Summary.TotalPay.StringFixed(2)),
	)
	return report, nil
}

// =============================================================================
// PURE COMPUTATION
// =============================================================================

// Compute prices emp's shifts over period. Shifts outside the period are
// ignored; every day of the period gets a DailyHours entry.
func Compute(emp Employee, shifts []Shift, period Period, settings Settings) EmployeePayroll {
	hoursByDate := make(map[string]decimal.Decimal, len(shifts))
	for _, s := range shifts {
		if period.Contains(s.Date) {
			hoursByDate[s.Date.String()] = s.Hours()
		}
	}

	segments := []Period{period}
	if settings.Segmentation == SegmentCalendarWeek {
		segments = period.CalendarWeeks()
	}

	days := make([]DailyHours, 0, period.Len())
	for _, seg := range segments {
		var dates []Date
		var hours []decimal.Decimal
		for d := range seg.Days() {
			dates = append(dates, d)
			hours = append(hours, hoursByDate[d.String()])
		}
		for i, split := range WeeklySplit(hours, settings.WeeklyThreshold, settings.DailyThreshold) {
			days = append(days, DailyHours{
				Date:          dates[i],
				RegularHours:  split.Regular,
				OvertimeHours: split.Overtime,
				TotalHours:    split.Total(),
			})
		}
	}

	totalRegular := decimal.Zero
	totalOvertime := decimal.Zero
	for _, d := range days {
		totalRegular = totalRegular.Add(d.RegularHours)
		totalOvertime = totalOvertime.Add(d.OvertimeHours)
	}

	regularPay := round2(totalRegular.Mul(emp.HourlyRate))
	overtimePay := round2(totalOvertime.Mul(emp.HourlyRate).Mul(settings.OvertimeMultiplier))

	return EmployeePayroll{
		EmployeeID:         emp.ID,
		EmployeeName:       emp.Name,
		HourlyRate:         emp.HourlyRate,
		Days:               days,
		TotalRegularHours:  round2(totalRegular),
		TotalOvertimeHours: round2(totalOvertime),
		TotalHours:         round2(totalRegular.Add(totalOvertime)),
		RegularPay:         regularPay,
		OvertimePay:        overtimePay,
		TotalPay:           round2(regularPay.Add(overtimePay)),
	}
}

// Summarize totals employee payrolls, rounding each total again.
func Summarize(payrolls []EmployeePayroll) Summary {
	field := func(get func(EmployeePayroll) decimal.Decimal) decimal.Decimal {
		values := make([]decimal.Decimal, len(payrolls))
		for i, p := range payrolls {
			values[i] = get(p)
		}
		return round2(sum(values))
	}

	return Summary{
		TotalEmployees:     len(payrolls),
		TotalRegularHours:  field(func(p EmployeePayroll) decimal.Decimal { return p.TotalRegularHours }),
		TotalOvertimeHours: field(func(p EmployeePayroll) decimal.Decimal { return p.TotalOvertimeHours }),
		TotalHours:         field(func(p EmployeePayroll) decimal.Decimal { return p.TotalHours }),
		TotalRegularPay:    field(func(p EmployeePayroll) decimal.Decimal { return p.RegularPay }),
		TotalOvertimePay:   field(func(p EmployeePayroll) decimal.Decimal { return p.OvertimePay }),
		TotalPay:           field(func(p EmployeePayroll) decimal.Decimal { return p.TotalPay }),
	}
}
