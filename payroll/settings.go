package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Segmentation controls where the weekly threshold restarts.
type Segmentation string

const (
	// SegmentRange accumulates the weekly threshold over the whole queried
	// range. A biweekly report therefore allows WeeklyThreshold regular hours
	// across both weeks, not per week.
	SegmentRange Segmentation = "range"

	// SegmentCalendarWeek restarts the weekly threshold every Monday.
	SegmentCalendarWeek Segmentation = "calendar_week"
)

// Settings are the overtime rules. They are read fresh for every report and
// passed explicitly into each calculation.
type Settings struct {
	WeeklyThreshold    decimal.Decimal
	DailyThreshold     decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	Segmentation       Segmentation

	// DefaultCloseTime is the end time offered for new shifts. Not used in
	// any calculation.
	DefaultCloseTime TimeOfDay
}

// Setting keys as persisted by stores.
const (
	KeyWeeklyThreshold    = "overtime_weekly_threshold"
	KeyDailyThreshold     = "overtime_daily_threshold"
	KeyOvertimeMultiplier = "overtime_multiplier"
	KeySegmentation       = "weekly_segmentation"
	KeyDefaultCloseTime   = "default_close_time"
)

// DefaultSettings: 40h/week, 8h/day, time and a half.
func DefaultSettings() Settings {
	return Settings{
		WeeklyThreshold:    decimal.NewFromInt(40),
		DailyThreshold:     decimal.NewFromInt(8),
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
		Segmentation:       SegmentRange,
		DefaultCloseTime:   MustTime(21, 0),
	}
}

// Validate checks the rule values are usable.
func (s Settings) Validate() error {
	switch {
	case s.WeeklyThreshold.IsNegative():
		return fmt.Errorf("%w: weekly threshold %s is negative", ErrInvalidSettings, s.WeeklyThreshold)
	case s.DailyThreshold.IsNegative():
		return fmt.Errorf("%w: daily threshold %s is negative", ErrInvalidSettings, s.DailyThreshold)
	case s.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: overtime multiplier %s is below 1.0", ErrInvalidSettings, s.OvertimeMultiplier)
	}
	switch s.Segmentation {
	case SegmentRange, SegmentCalendarWeek:
	default:
		return fmt.Errorf("%w: unknown weekly segmentation %q", ErrInvalidSettings, s.Segmentation)
	}
	return nil
}

// SettingsFromMap decodes persisted key/value settings. Missing keys keep
// their defaults; present but malformed values are errors.
func SettingsFromMap(values map[string]string) (Settings, error) {
	s := DefaultSettings()

	decimals := []struct {
		key string
		dst *decimal.Decimal
	}{
		{KeyWeeklyThreshold, &s.WeeklyThreshold},
		{KeyDailyThreshold, &s.DailyThreshold},
		{KeyOvertimeMultiplier, &s.OvertimeMultiplier},
	}
	for _, f := range decimals {
		raw, ok := values[f.key]
		if !ok || raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidSettings, f.key, raw)
		}
		*f.dst = d
	}

	if raw, ok := values[KeySegmentation]; ok && raw != "" {
		s.Segmentation = Segmentation(raw)
	}
	if raw, ok := values[KeyDefaultCloseTime]; ok && raw != "" {
		t, err := ParseTimeOfDay(raw)
		if err != nil {
			return Settings{}, err
		}
		s.DefaultCloseTime = t
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ToMap encodes settings for a key/value store.
func (s Settings) ToMap() map[string]string {
	return map[string]string{
		KeyWeeklyThreshold:    s.WeeklyThreshold.String(),
		KeyDailyThreshold:     s.DailyThreshold.String(),
		KeyOvertimeMultiplier: s.OvertimeMultiplier.String(),
		KeySegmentation:       string(s.Segmentation),
		KeyDefaultCloseTime:   s.DefaultCloseTime.String(),
	}
}
