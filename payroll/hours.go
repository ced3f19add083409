package payroll

import (
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// =============================================================================
// SHIFT ARITHMETIC
// =============================================================================

// ShiftHours returns the paid hours between start and end, less lunch.
//
// An end earlier than start crosses midnight. A lunch of zero or negative
// length deducts nothing, and the result never goes below zero. Plausibility
// (a 20-hour shift, a lunch outside the shift) is not checked.
func ShiftHours(start, end TimeOfDay, lunch *LunchBreak) decimal.Decimal {
	startMinutes := start.Minutes()
	endMinutes := end.Minutes()
	if endMinutes < startMinutes {
		endMinutes += minutesPerDay
	}

	diff := endMinutes - startMinutes
	if lunch != nil {
		diff -= lunch.Minutes()
	}
	if diff < 0 {
		diff = 0
	}
	return round2(decimal.NewFromInt(int64(diff)).Div(minutesPerHour))
}

// CalculateShiftHours is ShiftHours over "HH:MM" strings. Lunch applies only
// when both bounds are non-empty. Malformed times fail with ErrInvalidTimeFormat.
func CalculateShiftHours(start, end, lunchStart, lunchEnd string) (decimal.Decimal, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return decimal.Zero, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return decimal.Zero, err
	}
	lunch, err := ParseLunch(lunchStart, lunchEnd)
	if err != nil {
		return decimal.Zero, err
	}
	return ShiftHours(s, e, lunch), nil
}

// ParseLunch builds a LunchBreak from two optional strings. Either bound
// missing means no lunch.
func ParseLunch(start, end string) (*LunchBreak, error) {
	if start == "" || end == "" {
		return nil, nil
	}
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return nil, err
	}
	return &LunchBreak{Start: s, End: e}, nil
}

// =============================================================================
// OVERTIME ALLOCATION
// =============================================================================

// Split is a day's hours divided into regular and overtime.
type Split struct {
	Regular  decimal.Decimal
	Overtime decimal.Decimal
}

func (s Split) Total() decimal.Decimal {
	return round2(s.Regular.Add(s.Overtime))
}

// DailySplit applies the daily threshold to one day's hours.
func DailySplit(hours, dailyThreshold decimal.Decimal) Split {
	if hours.LessThanOrEqual(dailyThreshold) {
		return Split{Regular: hours, Overtime: decimal.Zero}
	}
	return Split{Regular: dailyThreshold, Overtime: round2(hours.Sub(dailyThreshold))}
}

// WeeklySplit folds chronological daily hours into regular/overtime under
// both thresholds. The result has one entry per input day, in input order.
//
// The fold is order dependent: weekly regular capacity is consumed left to
// right, so later days absorb the reclassification. Daily overtime always
// stays overtime; only a day's regular portion can move to overtime once the
// weekly threshold is spent. The threshold covers exactly the slice given;
// callers wanting per-week resets pass one slice per week.
func WeeklySplit(dailyHours []decimal.Decimal, weeklyThreshold, dailyThreshold decimal.Decimal) []Split {
	results := make([]Split, 0, len(dailyHours))
	cumulativeRegular := decimal.Zero

	for _, hours := range dailyHours {
		day := DailySplit(hours, dailyThreshold)

		if cumulativeRegular.Add(day.Regular).GreaterThan(weeklyThreshold) {
			allowed := decimal.Max(decimal.Zero, weeklyThreshold.Sub(cumulativeRegular))
			day.Overtime = day.Overtime.Add(day.Regular.Sub(allowed))
			day.Regular = allowed
		}

		cumulativeRegular = cumulativeRegular.Add(day.Regular)
		results = append(results, Split{Regular: round2(day.Regular), Overtime: round2(day.Overtime)})
	}
	return results
}
