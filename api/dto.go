/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ENCODING:
  Dates are "YYYY-MM-DD", clock times "HH:MM". Hours and money are JSON
  numbers already rounded to 2 places by the engine; the domain keeps them
  as decimals.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/scheduler"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
	IsActive   bool    `json:"is_active"`
}

// EmployeeRequest creates or updates an employee. On update, omitted fields
// keep their current values.
type EmployeeRequest struct {
	Name       *string  `json:"name"`
	HourlyRate *float64 `json:"hourly_rate"`
	IsActive   *bool    `json:"is_active"`
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		HourlyRate: e.HourlyRate.InexactFloat64(),
		IsActive:   e.IsActive,
	}
}

// =============================================================================
// SHIFTS AND TEMPLATES
// =============================================================================

// ShiftDTO represents a scheduled shift.
type ShiftDTO struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	LunchStart   string  `json:"lunch_start,omitempty"`
	LunchEnd     string  `json:"lunch_end,omitempty"`
	TemplateID   string  `json:"template_id,omitempty"`
	Hours        float64 `json:"hours"`
}

// ShiftRequest sets the shift for one employee on one day. With TemplateID
// the template's times are used and the other fields are ignored. AutoLunch
// applies the default lunch rule when no lunch is given.
type ShiftRequest struct {
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
	TemplateID string `json:"template_id"`
	AutoLunch  bool   `json:"auto_lunch"`
}

func toShiftDTO(s payroll.Shift, name string) ShiftDTO {
	dto := ShiftDTO{
		EmployeeID:   string(s.EmployeeID),
		EmployeeName: name,
		Date:         s.Date.String(),
		StartTime:    s.Start.String(),
		EndTime:      s.End.String(),
		TemplateID:   string(s.TemplateID),
		Hours:        s.Hours().InexactFloat64(),
	}
	if s.Lunch != nil {
		dto.LunchStart = s.Lunch.Start.String()
		dto.LunchEnd = s.Lunch.End.String()
	}
	return dto
}

// TemplateDTO represents a shift template.
type TemplateDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	LunchStart string  `json:"lunch_start,omitempty"`
	LunchEnd   string  `json:"lunch_end,omitempty"`
	Hours      float64 `json:"hours"`
}

// TemplateRequest creates or replaces a template.
type TemplateRequest struct {
	Name       string `json:"name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

func toTemplateDTO(t payroll.ShiftTemplate) TemplateDTO {
	dto := TemplateDTO{
		ID:        string(t.ID),
		Name:      t.Name,
		StartTime: t.Start.String(),
		EndTime:   t.End.String(),
		Hours:     t.Hours().InexactFloat64(),
	}
	if t.Lunch != nil {
		dto.LunchStart = t.Lunch.Start.String()
		dto.LunchEnd = t.Lunch.End.String()
	}
	return dto
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO represents the overtime rules.
type SettingsDTO struct {
	WeeklyThreshold    float64 `json:"overtime_weekly_threshold"`
	DailyThreshold     float64 `json:"overtime_daily_threshold"`
	OvertimeMultiplier float64 `json:"overtime_multiplier"`
	Segmentation       string  `json:"weekly_segmentation"`
	DefaultCloseTime   string  `json:"default_close_time"`
}

// SettingsRequest updates the overtime rules. Omitted fields are unchanged.
type SettingsRequest struct {
	WeeklyThreshold    *float64 `json:"overtime_weekly_threshold"`
	DailyThreshold     *float64 `json:"overtime_daily_threshold"`
	OvertimeMultiplier *float64 `json:"overtime_multiplier"`
	Segmentation       *string  `json:"weekly_segmentation"`
	DefaultCloseTime   *string  `json:"default_close_time"`
}

func toSettingsDTO(s payroll.Settings) SettingsDTO {
	return SettingsDTO{
		WeeklyThreshold:    s.WeeklyThreshold.InexactFloat64(),
		DailyThreshold:     s.DailyThreshold.InexactFloat64(),
		OvertimeMultiplier: s.OvertimeMultiplier.InexactFloat64(),
		Segmentation:       string(s.Segmentation),
		DefaultCloseTime:   s.DefaultCloseTime.String(),
	}
}

// apply merges the request onto s.
func (r SettingsRequest) apply(s payroll.Settings) (payroll.Settings, error) {
	if r.WeeklyThreshold != nil {
		s.WeeklyThreshold = decimal.NewFromFloat(*r.WeeklyThreshold)
	}
	if r.DailyThreshold != nil {
		s.DailyThreshold = decimal.NewFromFloat(*r.DailyThreshold)
	}
	if r.OvertimeMultiplier != nil {
		s.OvertimeMultiplier = decimal.NewFromFloat(*r.OvertimeMultiplier)
	}
	if r.Segmentation != nil {
		s.Segmentation = payroll.Segmentation(*r.Segmentation)
	}
	if r.DefaultCloseTime != nil {
		t, err := payroll.ParseTimeOfDay(*r.DefaultCloseTime)
		if err != nil {
			return s, err
		}
		s.DefaultCloseTime = t
	}
	return s, s.Validate()
}

// =============================================================================
// PERIODS AND HOURS
// =============================================================================

// PeriodDTO represents a pay period and its dates.
type PeriodDTO struct {
	Start string   `json:"start_date"`
	End   string   `json:"end_date"`
	Dates []string `json:"dates"`
}

func toPeriodDTO(p payroll.Period) PeriodDTO {
	dto := PeriodDTO{Start: p.Start.String(), End: p.End.String()}
	for d := range p.Days() {
		dto.Dates = append(dto.Dates, d.String())
	}
	return dto
}

// HoursDTO is the paid length of a single shift.
type HoursDTO struct {
	Hours float64 `json:"hours"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// DailyHoursDTO is one day of an employee's breakdown.
type DailyHoursDTO struct {
	Date          string  `json:"date"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	TotalHours    float64 `json:"total_hours"`
}

// EmployeePayrollDTO is one employee's payroll over a period.
type EmployeePayrollDTO struct {
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name"`
	HourlyRate         float64         `json:"hourly_rate"`
	DailyBreakdown     []DailyHoursDTO `json:"daily_breakdown"`
	TotalRegularHours  float64         `json:"total_regular_hours"`
	TotalOvertimeHours float64         `json:"total_overtime_hours"`
	TotalHours         float64         `json:"total_hours"`
	RegularPay         float64         `json:"regular_pay"`
	OvertimePay        float64         `json:"overtime_pay"`
	TotalPay           float64         `json:"total_pay"`
}

// SummaryDTO totals a report.
type SummaryDTO struct {
	TotalEmployees     int     `json:"total_employees"`
	TotalRegularHours  float64 `json:"total_regular_hours"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
	TotalHours         float64 `json:"total_hours"`
	TotalRegularPay    float64 `json:"total_regular_pay"`
	TotalOvertimePay   float64 `json:"total_overtime_pay"`
	TotalPay           float64 `json:"total_pay"`
}

// SkippedDTO names an employee left out of a report.
type SkippedDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reason       string `json:"reason"`
}

// ReportDTO is a payroll report.
type ReportDTO struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Employees []EmployeePayrollDTO `json:"employees"`
	Summary   SummaryDTO           `json:"summary"`
	Settings  SettingsDTO          `json:"settings"`
	Skipped   []SkippedDTO         `json:"skipped,omitempty"`
}

func toEmployeePayrollDTO(ep payroll.EmployeePayroll) EmployeePayrollDTO {
	days := make([]DailyHoursDTO, len(ep.Days))
	for i, d := range ep.Days {
		days[i] = DailyHoursDTO{
			Date:          d.Date.String(),
			RegularHours:  d.RegularHours.InexactFloat64(),
			OvertimeHours: d.OvertimeHours.InexactFloat64(),
			TotalHours:    d.TotalHours.InexactFloat64(),
		}
	}
	return EmployeePayrollDTO{
		EmployeeID:         string(ep.EmployeeID),
		EmployeeName:       ep.EmployeeName,
		HourlyRate:         ep.HourlyRate.InexactFloat64(),
		DailyBreakdown:     days,
		TotalRegularHours:  ep.TotalRegularHours.InexactFloat64(),
		TotalOvertimeHours: ep.TotalOvertimeHours.InexactFloat64(),
		TotalHours:         ep.TotalHours.InexactFloat64(),
		RegularPay:         ep.RegularPay.InexactFloat64(),
		OvertimePay:        ep.OvertimePay.InexactFloat64(),
		TotalPay:           ep.TotalPay.InexactFloat64(),
	}
}

func toReportDTO(r payroll.Report) ReportDTO {
	employees := make([]EmployeePayrollDTO, len(r.Employees))
	for i, ep := range r.Employees {
		employees[i] = toEmployeePayrollDTO(ep)
	}
	var skipped []SkippedDTO
	for _, s := range r.Skipped {
		skipped = append(skipped, SkippedDTO{EmployeeID: string(s.ID), EmployeeName: s.Name, Reason: s.Reason})
	}
	return ReportDTO{
		StartDate: r.Period.Start.String(),
		EndDate:   r.Period.End.String(),
		Employees: employees,
		Summary: SummaryDTO{
			TotalEmployees:     r.Summary.TotalEmployees,
			TotalRegularHours:  r.Summary.TotalRegularHours.InexactFloat64(),
			TotalOvertimeHours: r.Summary.TotalOvertimeHours.InexactFloat64(),
			TotalHours:         r.Summary.TotalHours.InexactFloat64(),
			TotalRegularPay:    r.Summary.TotalRegularPay.InexactFloat64(),
			TotalOvertimePay:   r.Summary.TotalOvertimePay.InexactFloat64(),
			TotalPay:           r.Summary.TotalPay.InexactFloat64(),
		},
		Settings: toSettingsDTO(r.Settings),
		Skipped:  skipped,
	}
}

// =============================================================================
// SCHEDULER
// =============================================================================

// RunDTO is one period-close run.
type RunDTO struct {
	ID          string     `json:"id"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Employees   int        `json:"employees"`
	TotalPay    string     `json:"total_pay,omitempty"`
	File        string     `json:"file,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func toRunDTO(r scheduler.Run) RunDTO {
	return RunDTO{
		ID:          r.ID,
		StartDate:   r.Period.Start.String(),
		EndDate:     r.Period.End.String(),
		Status:      r.Status,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Employees:   r.Employees,
		TotalPay:    r.TotalPay,
		File:        r.File,
		Error:       r.Error,
	}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
