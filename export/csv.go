/*
Package export renders payroll reports as CSV.

Two layouts:
  - Payroll summary: one row per employee plus a TOTAL row
  - Schedule grid: one row per employee, one column per day of the period,
    each cell showing the shift times, lunch and paid hours

Amounts are written with two decimal places; hours as plain decimals.
*/
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// PayrollRow is one line of the payroll summary CSV.
type PayrollRow struct {
	Employee      string `csv:"Employee"`
	HourlyRate    string `csv:"Hourly Rate"`
	RegularHours  string `csv:"Regular Hours"`
	OvertimeHours string `csv:"Overtime Hours"`
	TotalHours    string `csv:"Total Hours"`
	RegularPay    string `csv:"Regular Pay"`
	OvertimePay   string `csv:"Overtime Pay"`
	TotalPay      string `csv:"Total Pay"`
}

// PayrollRows flattens a report into summary rows, ending with the TOTAL row.
func PayrollRows(report payroll.Report) []*PayrollRow {
	rows := make([]*PayrollRow, 0, len(report.Employees)+1)
	for _, ep := range report.Employees {
		rows = append(rows, &PayrollRow{
			Employee:      ep.EmployeeName,
			HourlyRate:    ep.HourlyRate.String(),
			RegularHours:  ep.TotalRegularHours.String(),
			OvertimeHours: ep.TotalOvertimeHours.String(),
			TotalHours:    ep.TotalHours.String(),
			RegularPay:    money(ep.RegularPay),
			OvertimePay:   money(ep.OvertimePay),
			TotalPay:      money(ep.TotalPay),
		})
	}

	s := report.Summary
	rows = append(rows, &PayrollRow{
		Employee:      "TOTAL",
		RegularHours:  s.TotalRegularHours.String(),
		OvertimeHours: s.TotalOvertimeHours.String(),
		TotalHours:    s.TotalHours.String(),
		RegularPay:    money(s.TotalRegularPay),
		OvertimePay:   money(s.TotalOvertimePay),
		TotalPay:      money(s.TotalPay),
	})
	return rows
}

// WritePayrollCSV writes the payroll summary for report to w.
func WritePayrollCSV(w io.Writer, report payroll.Report) error {
	if err := gocsv.Marshal(PayrollRows(report), w); err != nil {
		return fmt.Errorf("write payroll csv: %w", err)
	}
	return nil
}

// ===== Schedule grid =====

var dayAbbrev = [...]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

const emptyCell = "----"

// DayLabel is the grid column header for d, e.g. "Mo 6".
func DayLabel(d payroll.Date) string {
	return fmt.Sprintf("%s %d", dayAbbrev[d.Weekday()], d.Day())
}

// ShiftCell renders a shift as "10AM-6PM (L:3PM-4PM) - 7h".
func ShiftCell(s payroll.Shift) string {
	cell := payroll.RangeLabel(s.Start, s.End)
	if s.Lunch != nil {
		cell += " (L:" + payroll.RangeLabel(s.Lunch.Start, s.Lunch.End) + ")"
	}
	return fmt.Sprintf("%s - %sh", cell, s.Hours())
}

// ScheduleGrid builds the schedule table for report: a header row followed by
// one row per employee in report order. shifts may cover any range; only those
// inside the report period for listed employees appear.
func ScheduleGrid(report payroll.Report, shifts []payroll.Shift) [][]string {
	type key struct {
		id   payroll.EmployeeID
		date string
	}
	byKey := make(map[key]payroll.Shift, len(shifts))
	for _, s := range shifts {
		byKey[key{s.EmployeeID, s.Date.String()}] = s
	}

	header := []string{"Employee"}
	for d := range report.Period.Days() {
		header = append(header, DayLabel(d))
	}
	header = append(header, "Total Hours", "Pay")

	grid := [][]string{header}
	for _, ep := range report.Employees {
		row := []string{ep.EmployeeName}
		for d := range report.Period.Days() {
			if s, ok := byKey[key{ep.EmployeeID, d.String()}]; ok {
				row = append(row, ShiftCell(s))
			} else {
				row = append(row, emptyCell)
			}
		}
		row = append(row, ep.TotalHours.String(), "$"+money(ep.TotalPay))
		grid = append(grid, row)
	}
	return grid
}

// WriteScheduleCSV writes the schedule grid for report to w.
func WriteScheduleCSV(w io.Writer, report payroll.Report, shifts []payroll.Shift) error {
	csvWriter := gocsv.DefaultCSVWriter(w)
	for _, row := range ScheduleGrid(report, shifts) {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("write schedule csv: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("write schedule csv: %w", err)
	}
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
