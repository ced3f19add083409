package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = dec(v)
	}
	return out
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func tm(s string) payroll.TimeOfDay {
	return payroll.MustParseTime(s)
}

func lunch(start, end string) *payroll.LunchBreak {
	return &payroll.LunchBreak{Start: tm(start), End: tm(end)}
}

// =============================================================================
// SHIFT HOURS
// =============================================================================

func TestShiftHours(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		lunch *payroll.LunchBreak
		want  string
	}{
		{"day shift", "10:00", "18:00", nil, "8"},
		{"overnight wrap", "22:00", "06:00", nil, "8"},
		{"lunch deducted", "10:00", "18:00", lunch("15:00", "16:00"), "7"},
		{"zero lunch deducts nothing", "10:00", "18:00", lunch("15:00", "15:00"), "8"},
		{"inverted lunch deducts nothing", "10:00", "18:00", lunch("16:00", "15:00"), "8"},
		{"rounded to two places", "10:00", "10:20", nil, "0.33"},
		{"same start and end", "09:00", "09:00", nil, "0"},
		{"lunch longer than shift clamps to zero", "10:00", "11:00", lunch("09:00", "13:00"), "0"},
		{"implausibly long shift accepted", "06:00", "05:00", nil, "23"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := payroll.ShiftHours(tm(tc.start), tm(tc.end), tc.lunch)
			assertDec(t, tc.want, got)
		})
	}
}

func TestCalculateShiftHours_Strings(t *testing.T) {
	got, err := payroll.CalculateShiftHours("10:00", "18:00", "15:00", "16:00")
	require.NoError(t, err)
	assertDec(t, "7", got)

	// Only one lunch bound: no lunch
	got, err = payroll.CalculateShiftHours("10:00", "18:00", "15:00", "")
	require.NoError(t, err)
	assertDec(t, "8", got)
}

func TestCalculateShiftHours_InvalidTime(t *testing.T) {
	for _, bad := range [][4]string{
		{"ten", "18:00", "", ""},
		{"10:00", "25:00", "", ""},
		{"10:00", "18:00", "15:xx", "16:00"},
	} {
		_, err := payroll.CalculateShiftHours(bad[0], bad[1], bad[2], bad[3])
		assert.ErrorIs(t, err, payroll.ErrInvalidTimeFormat, "input %v", bad)
	}
}

// =============================================================================
// DAILY SPLIT
// =============================================================================

func TestDailySplit(t *testing.T) {
	s := payroll.DailySplit(dec("10"), dec("8"))
	assertDec(t, "8", s.Regular)
	assertDec(t, "2", s.Overtime)

	s = payroll.DailySplit(dec("6"), dec("8"))
	assertDec(t, "6", s.Regular)
	assertDec(t, "0", s.Overtime)

	// Exactly at threshold stays regular
	s = payroll.DailySplit(dec("8"), dec("8"))
	assertDec(t, "8", s.Regular)
	assertDec(t, "0", s.Overtime)
}

// =============================================================================
// WEEKLY SPLIT
// =============================================================================

func totals(splits []payroll.Split) (regular, overtime decimal.Decimal) {
	regular, overtime = decimal.Zero, decimal.Zero
	for _, s := range splits {
		regular = regular.Add(s.Regular)
		overtime = overtime.Add(s.Overtime)
	}
	return regular, overtime
}

func TestWeeklySplit_UnderThresholds_AllRegular(t *testing.T) {
	// GIVEN: Five 6-hour days (30h total, under 40/week and 8/day)
	splits := payroll.WeeklySplit(decs("6", "6", "6", "6", "6"), dec("40"), dec("8"))

	// THEN: Everything is regular
	require.Len(t, splits, 5)
	for i, s := range splits {
		assertDec(t, "6", s.Regular, i)
		assertDec(t, "0", s.Overtime, i)
	}
}

func TestWeeklySplit_FiveTenHourDays(t *testing.T) {
	// GIVEN: Five 10-hour days, daily 8, weekly 40
	// WHEN: Splitting
	// THEN: Each day is 8 regular + 2 daily overtime. Day 5 brings cumulative
	// regular to exactly 40, which does not exceed the weekly threshold.
	splits := payroll.WeeklySplit(decs("10", "10", "10", "10", "10"), dec("40"), dec("8"))

	require.Len(t, splits, 5)
	for i, s := range splits {
		assertDec(t, "8", s.Regular, i)
		assertDec(t, "2", s.Overtime, i)
	}
	regular, overtime := totals(splits)
	assertDec(t, "40", regular)
	assertDec(t, "10", overtime)
	assertDec(t, "50", regular.Add(overtime))
}

func TestWeeklySplit_WeeklyExhaustion(t *testing.T) {
	// GIVEN: Six 10-hour days
	// WHEN: Days 1-5 use all 40 weekly regular hours
	// THEN: Day 6's would-be 8 regular all become overtime, its 2 daily OT kept
	splits := payroll.WeeklySplit(decs("10", "10", "10", "10", "10", "10"), dec("40"), dec("8"))

	require.Len(t, splits, 6)
	assertDec(t, "0", splits[5].Regular)
	assertDec(t, "10", splits[5].Overtime)

	regular, overtime := totals(splits)
	assertDec(t, "40", regular)
	assertDec(t, "20", overtime)
}

func TestWeeklySplit_PartialExhaustion(t *testing.T) {
	// GIVEN: Weekly threshold 36 with five 10-hour days
	// THEN: Day 5 only gets 4 regular (36 - 32); the other 4 join its 2 daily OT
	splits := payroll.WeeklySplit(decs("10", "10", "10", "10", "10"), dec("36"), dec("8"))

	assertDec(t, "4", splits[4].Regular)
	assertDec(t, "6", splits[4].Overtime)

	regular, overtime := totals(splits)
	assertDec(t, "36", regular)
	assertDec(t, "14", overtime)
}

func TestWeeklySplit_OrderSensitive(t *testing.T) {
	// GIVEN: A 10-hour day and a 2-hour day with an 8-hour weekly threshold
	forward := payroll.WeeklySplit(decs("10", "2"), dec("8"), dec("8"))
	reversed := payroll.WeeklySplit(decs("2", "10"), dec("8"), dec("8"))

	// THEN: The 10-hour day is split differently depending on its position
	assertDec(t, "8", forward[0].Regular)
	assertDec(t, "2", forward[0].Overtime)
	assertDec(t, "6", reversed[1].Regular)
	assertDec(t, "4", reversed[1].Overtime)

	// And the 2-hour day flips from all-overtime to all-regular
	assertDec(t, "0", forward[1].Regular)
	assertDec(t, "2", reversed[0].Regular)
}

func TestWeeklySplit_EmptyInput(t *testing.T) {
	splits := payroll.WeeklySplit(nil, dec("40"), dec("8"))
	assert.Empty(t, splits)
}

func TestWeeklySplit_DailyOvertimeNeverReclassifiedAsRegular(t *testing.T) {
	// Weekly threshold 0: every hour is overtime, daily OT included once
	splits := payroll.WeeklySplit(decs("9", "3"), dec("0"), dec("8"))
	assertDec(t, "0", splits[0].Regular)
	assertDec(t, "9", splits[0].Overtime)
	assertDec(t, "0", splits[1].Regular)
	assertDec(t, "3", splits[1].Overtime)
}

// =============================================================================
// DEFAULT LUNCH
// =============================================================================

func TestDefaultLunch(t *testing.T) {
	l := payroll.DefaultLunch(tm("10:00"), tm("18:00"))
	require.NotNil(t, l)
	assert.Equal(t, "15:00", l.Start.String())
	assert.Equal(t, "16:00", l.End.String())

	assert.Nil(t, payroll.DefaultLunch(tm("16:00"), tm("22:00")), "starts at 4pm")
	assert.Nil(t, payroll.DefaultLunch(tm("09:00"), tm("16:00")), "ends at 4pm")
	assert.Nil(t, payroll.DefaultLunch(tm("09:00"), tm("16:45")), "ends within the 4pm hour")
	assert.NotNil(t, payroll.DefaultLunch(tm("15:30"), tm("17:00")))
}
