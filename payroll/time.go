package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day, no time of day, no zone
// =============================================================================

const dateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day. The wrapped time is always midnight UTC.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping t's own calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate reads an ISO-8601 calendar date ("2025-01-06").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &InvalidDateError{Value: s}
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int              { return d.Time.Year() }
func (d Date) Month() time.Month      { return d.Time.Month() }
func (d Date) Day() int               { return d.Time.Day() }
func (d Date) Weekday() time.Weekday  { return d.Time.Weekday() }
func (d Date) IsZero() bool           { return d.Time.IsZero() }
func (d Date) String() string         { return d.Time.Format(dateLayout) }

// Monday returns the Monday starting d's week.
func (d Date) Monday() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween counts whole days from -> to (negative when to is earlier).
// Computed on Unix seconds so it holds for dates centuries apart.
func DaysBetween(from, to Date) int {
	return int((to.Time.Unix() - from.Time.Unix()) / secondsPerDay)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// =============================================================================
// TIME OF DAY - Wall-clock shift time, minutes since midnight
// =============================================================================

const minutesPerDay = 24 * 60

// TimeOfDay is a local clock value in [00:00, 23:59].
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &InvalidTimeError{Value: fmt.Sprintf("%d:%d", hour, minute)}
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTime is NewTimeOfDay for literals known to be valid.
func MustTime(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay reads "HH:MM" (24-hour). A bare hour ("9") means minute zero.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.TrimSpace(s)
	hourPart, minutePart, hasMinutes := strings.Cut(raw, ":")

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, &InvalidTimeError{Value: s}
	}
	minute := 0
	if hasMinutes {
		if minute, err = strconv.Atoi(minutePart); err != nil {
			return 0, &InvalidTimeError{Value: s}
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &InvalidTimeError{Value: s}
	}
	return TimeOfDay(hour*60 + minute), nil
}

func MustParseTime(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Label renders the 12-hour form used on schedules: "3PM", "8:45AM".
func (t TimeOfDay) Label() string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	period := "AM"
	if t.Hour() >= 12 {
		period = "PM"
	}
	if t.Minute() == 0 {
		return fmt.Sprintf("%d%s", hour, period)
	}
	return fmt.Sprintf("%d:%02d%s", hour, t.Minute(), period)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// RangeLabel renders "10AM-6PM".
func RangeLabel(start, end TimeOfDay) string {
	return start.Label() + "-" + end.Label()
}
