package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func employee(id, name, rate string) payroll.Employee {
	return payroll.Employee{
		ID:         payroll.EmployeeID(id),
		Name:       name,
		HourlyRate: decimal.RequireFromString(rate),
		IsActive:   true,
	}
}

func shift(id, date, start, end string, lunch *payroll.LunchBreak) payroll.Shift {
	return payroll.Shift{
		EmployeeID: payroll.EmployeeID(id),
		Date:       payroll.MustParseDate(date),
		Start:      payroll.MustParseTime(start),
		End:        payroll.MustParseTime(end),
		Lunch:      lunch,
	}
}

func TestStore_EmployeeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveEmployee(ctx, employee("e2", "Zoe", "18.25")))
	require.NoError(t, s.SaveEmployee(ctx, employee("e1", "Adam", "15.375")))

	got, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Adam", got.Name)
	assert.True(t, decimal.RequireFromString("15.375").Equal(got.HourlyRate))

	missing, err := s.GetEmployee(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := s.ListEmployees(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adam", list[0].Name)

	// Soft delete hides from the active list only
	require.NoError(t, s.DeleteEmployee(ctx, "e2", false))
	active, err := s.ListEmployees(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	all, err := s.ListEmployees(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = s.DeleteEmployee(ctx, "nobody", false)
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

func TestStore_HardDeleteRemovesShifts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveEmployee(ctx, employee("e1", "Adam", "10")))
	require.NoError(t, s.SaveShift(ctx, shift("e1", "2025-01-06", "10:00", "18:00", nil)))

	require.NoError(t, s.DeleteEmployee(ctx, "e1", true))

	got, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got)

	shifts, err := s.ShiftsInRange(ctx, payroll.MustParseDate("2025-01-01"), payroll.MustParseDate("2025-01-31"))
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestStore_ShiftUpsertAndRange(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveEmployee(ctx, employee("e1", "Zoe", "10")))
	require.NoError(t, s.SaveEmployee(ctx, employee("e2", "Adam", "10")))

	lunch := &payroll.LunchBreak{Start: payroll.MustParseTime("15:00"), End: payroll.MustParseTime("16:00")}
	require.NoError(t, s.SaveShift(ctx, shift("e1", "2025-01-07", "10:00", "18:00", lunch)))
	require.NoError(t, s.SaveShift(ctx, shift("e2", "2025-01-07", "22:00", "06:00", nil)))
	require.NoError(t, s.SaveShift(ctx, shift("e1", "2025-01-06", "09:00", "17:00", nil)))

	// Saving the same (employee, date) replaces the shift
	require.NoError(t, s.SaveShift(ctx, shift("e1", "2025-01-06", "08:00", "12:00", nil)))

	shifts, err := s.ShiftsInRange(ctx, payroll.MustParseDate("2025-01-06"), payroll.MustParseDate("2025-01-07"))
	require.NoError(t, err)
	require.Len(t, shifts, 3)
	assert.Equal(t, "08:00", shifts[0].Start.String())
	// Same date ordered by employee name
	assert.Equal(t, payroll.EmployeeID("e2"), shifts[1].EmployeeID)
	assert.Equal(t, payroll.EmployeeID("e1"), shifts[2].EmployeeID)
	require.NotNil(t, shifts[2].Lunch)
	assert.Equal(t, "15:00", shifts[2].Lunch.Start.String())
	assert.Nil(t, shifts[1].Lunch)

	mine, err := s.ShiftsForEmployee(ctx, "e1", payroll.MustParseDate("2025-01-07"), payroll.MustParseDate("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, decimal.NewFromInt(7).Equal(mine[0].Hours()))
}

func TestStore_ShiftForUnknownEmployee(t *testing.T) {
	s := newStore(t)
	err := s.SaveShift(context.Background(), shift("ghost", "2025-01-06", "10:00", "18:00", nil))
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

func TestStore_DeleteAndClearShifts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveEmployee(ctx, employee("e1", "Adam", "10")))
	for _, d := range []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-20"} {
		require.NoError(t, s.SaveShift(ctx, shift("e1", d, "10:00", "18:00", nil)))
	}

	require.NoError(t, s.DeleteShift(ctx, "e1", payroll.MustParseDate("2025-01-06")))
	assert.ErrorIs(t, s.DeleteShift(ctx, "e1", payroll.MustParseDate("2025-01-06")), payroll.ErrShiftNotFound)

	n, err := s.ClearShifts(ctx, payroll.MustParseDate("2025-01-06"), payroll.MustParseDate("2025-01-19"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.ShiftsForEmployee(ctx, "e1", payroll.MustParseDate("2025-01-01"), payroll.MustParseDate("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "2025-01-20", left[0].Date.String())
}

func TestStore_Templates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	closing := payroll.ShiftTemplate{ID: "close", Name: "Closing", Start: payroll.MustParseTime("14:00"), End: payroll.MustParseTime("22:00")}
	opening := payroll.ShiftTemplate{
		ID:    "open",
		Name:  "Opening",
		Start: payroll.MustParseTime("08:00"),
		End:   payroll.MustParseTime("16:00"),
		Lunch: &payroll.LunchBreak{Start: payroll.MustParseTime("12:00"), End: payroll.MustParseTime("12:30")},
	}
	require.NoError(t, s.SaveTemplate(ctx, closing))
	require.NoError(t, s.SaveTemplate(ctx, opening))

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, payroll.TemplateID("open"), list[0].ID)
	assert.Equal(t, opening, list[0])

	got, err := s.GetTemplate(ctx, "close")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Lunch)

	require.NoError(t, s.DeleteTemplate(ctx, "close"))
	assert.ErrorIs(t, s.DeleteTemplate(ctx, "close"), payroll.ErrTemplateNotFound)

	got, err = s.GetTemplate(ctx, "close")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Settings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: A fresh database
	// THEN: Defaults are seeded
	got, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(got.WeeklyThreshold))
	assert.Equal(t, payroll.SegmentRange, got.Segmentation)

	// WHEN: Settings are updated
	got.WeeklyThreshold = decimal.NewFromInt(44)
	got.Segmentation = payroll.SegmentCalendarWeek
	require.NoError(t, s.SaveSettings(ctx, got))

	// THEN: They are read back
	again, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(44).Equal(again.WeeklyThreshold))
	assert.Equal(t, payroll.SegmentCalendarWeek, again.Segmentation)

	// Invalid settings are rejected without touching the table
	bad := again
	bad.OvertimeMultiplier = decimal.RequireFromString("0.5")
	assert.ErrorIs(t, s.SaveSettings(ctx, bad), payroll.ErrInvalidSettings)
}

func TestStore_ReportEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveEmployee(ctx, employee("e1", "Adam", "15.375")))
	for _, d := range []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"} {
		require.NoError(t, s.SaveShift(ctx, shift("e1", d, "08:00", "18:00", nil)))
	}

	calc := payroll.NewCalculator(s)
	report, err := calc.Report(ctx, payroll.WeekOf(payroll.MustParseDate("2025-01-06")).Period)
	require.NoError(t, err)

	require.Len(t, report.Employees, 1)
	ep := report.Employees[0]
	assert.Equal(t, "40", ep.TotalRegularHours.String())
	assert.Equal(t, "10", ep.TotalOvertimeHours.String())
	assert.Equal(t, "615", ep.RegularPay.String())
	assert.Equal(t, "230.63", ep.OvertimePay.String())
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveEmployee(ctx, employee("e1", "Adam", "10")))
	settings := payroll.DefaultSettings()
	settings.DailyThreshold = decimal.NewFromInt(10)
	require.NoError(t, s.SaveSettings(ctx, settings))

	require.NoError(t, s.Reset(ctx))

	list, err := s.ListEmployees(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	got, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(8).Equal(got.DailyThreshold))
}
