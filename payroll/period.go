package payroll

import (
	"fmt"
	"iter"
)

// =============================================================================
// PERIOD - Inclusive date range payroll is computed over
// =============================================================================

// Period is the inclusive range [Start, End].
//
// Examples:
//   - Week: Monday 2025-01-06 - Sunday 2025-01-12
//   - Biweekly: 2025-01-06 - 2025-01-19
//   - Custom: any Start <= End
type Period struct {
	Start Date
	End   Date
}

// NewPeriod validates that end is not before start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, fmt.Errorf("%w: %s > %s", ErrInvalidPeriod, start, end)
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Len is the number of calendar days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Days yields every calendar day from Start to End. The sequence is lazy and
// can be ranged over any number of times.
func (p Period) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// CalendarWeeks cuts the period at Monday boundaries. The first and last
// segments may be shorter than seven days.
func (p Period) CalendarWeeks() []Period {
	var weeks []Period
	for start := p.Start; start.BeforeOrEqual(p.End); {
		end := start.Monday().AddDays(6)
		if end.After(p.End) {
			end = p.End
		}
		weeks = append(weeks, Period{Start: start, End: end})
		start = end.AddDays(1)
	}
	return weeks
}

// Next returns the same-length period immediately after this one.
func (p Period) Next() Period {
	n := p.Len()
	return Period{Start: p.Start.AddDays(n), End: p.End.AddDays(n)}
}

// Previous returns the same-length period immediately before this one.
func (p Period) Previous() Period {
	n := p.Len()
	return Period{Start: p.Start.AddDays(-n), End: p.End.AddDays(-n)}
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// PAY PERIODS - Monday-start weeks and anchored biweekly tiling
// =============================================================================

// BiweeklyAnchor is the Monday that starts a biweekly period. Every other
// Monday before and after it starts one too.
var BiweeklyAnchor = NewDate(2025, 1, 6)

// Week is a Monday-start week with its seven dates in order.
type Week struct {
	Period
	Dates [7]Date
}

// WeekOf returns the Monday-Sunday week containing ref.
func WeekOf(ref Date) Week {
	monday := ref.Monday()
	w := Week{Period: Period{Start: monday, End: monday.AddDays(6)}}
	for i := range w.Dates {
		w.Dates[i] = monday.AddDays(i)
	}
	return w
}

// BiweeklyOf returns the 14-day period containing ref, with periods tiled
// every two weeks from BiweeklyAnchor in both directions.
func BiweeklyOf(ref Date) Period {
	weekStart := ref.Monday()
	weeksDiff := floorDiv(DaysBetween(BiweeklyAnchor, weekStart), 7)

	start := weekStart
	if weeksDiff%2 != 0 {
		start = weekStart.AddDays(-7)
	}
	return Period{Start: start, End: start.AddDays(13)}
}

// PeriodKind names how a pay period is derived from a reference date.
type PeriodKind string

const (
	PeriodWeek     PeriodKind = "week"
	PeriodBiweekly PeriodKind = "biweekly"
	PeriodCustom   PeriodKind = "custom"
)

// ParsePeriodKind accepts the kinds above; empty means week.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch PeriodKind(s) {
	case "", PeriodWeek:
		return PeriodWeek, nil
	case PeriodBiweekly, PeriodCustom:
		return PeriodKind(s), nil
	}
	return "", fmt.Errorf("%w: unknown period kind %q", ErrInvalidPeriod, s)
}

// PeriodFor returns the week or biweekly period containing ref.
// Custom periods have no reference rule and must be built with NewPeriod.
func PeriodFor(kind PeriodKind, ref Date) (Period, error) {
	switch kind {
	case PeriodWeek:
		return WeekOf(ref).Period, nil
	case PeriodBiweekly:
		return BiweeklyOf(ref), nil
	}
	return Period{}, fmt.Errorf("%w: %q periods need explicit bounds", ErrInvalidPeriod, kind)
}
