package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func TestSettingsFromMap_DefaultsForMissingKeys(t *testing.T) {
	s, err := payroll.SettingsFromMap(map[string]string{})
	require.NoError(t, err)

	assertDec(t, "40", s.WeeklyThreshold)
	assertDec(t, "8", s.DailyThreshold)
	assertDec(t, "1.5", s.OvertimeMultiplier)
	assert.Equal(t, payroll.SegmentRange, s.Segmentation)
	assert.Equal(t, "21:00", s.DefaultCloseTime.String())
}

func TestSettingsFromMap_ParsesValues(t *testing.T) {
	s, err := payroll.SettingsFromMap(map[string]string{
		payroll.KeyWeeklyThreshold:    "44",
		payroll.KeyDailyThreshold:     "10.5",
		payroll.KeyOvertimeMultiplier: "2",
		payroll.KeySegmentation:       "calendar_week",
		payroll.KeyDefaultCloseTime:   "22:30",
	})
	require.NoError(t, err)

	assertDec(t, "44", s.WeeklyThreshold)
	assertDec(t, "10.5", s.DailyThreshold)
	assertDec(t, "2", s.OvertimeMultiplier)
	assert.Equal(t, payroll.SegmentCalendarWeek, s.Segmentation)
	assert.Equal(t, "22:30", s.DefaultCloseTime.String())
}

func TestSettingsFromMap_RejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"not a number":         {payroll.KeyWeeklyThreshold: "forty"},
		"negative threshold":   {payroll.KeyDailyThreshold: "-1"},
		"multiplier below 1":   {payroll.KeyOvertimeMultiplier: "0.9"},
		"unknown segmentation": {payroll.KeySegmentation: "monthly"},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := payroll.SettingsFromMap(values)
			assert.ErrorIs(t, err, payroll.ErrInvalidSettings)
			assert.True(t, payroll.IsClientError(err))
		})
	}

	_, err := payroll.SettingsFromMap(map[string]string{payroll.KeyDefaultCloseTime: "9pm"})
	assert.ErrorIs(t, err, payroll.ErrInvalidTimeFormat)
}

func TestSettings_MapRoundTrip(t *testing.T) {
	want := payroll.DefaultSettings()
	want.WeeklyThreshold = dec("37.5")
	want.Segmentation = payroll.SegmentCalendarWeek

	got, err := payroll.SettingsFromMap(want.ToMap())
	require.NoError(t, err)

	assertDec(t, "37.5", got.WeeklyThreshold)
	assertDec(t, "8", got.DailyThreshold)
	assertDec(t, "1.5", got.OvertimeMultiplier)
	assert.Equal(t, want.Segmentation, got.Segmentation)
	assert.Equal(t, want.DefaultCloseTime, got.DefaultCloseTime)
}

func TestShiftTemplate_Apply(t *testing.T) {
	tmpl := payroll.ShiftTemplate{
		ID:    "open",
		Name:  "Opening",
		Start: tm("08:45"),
		End:   tm("17:00"),
		Lunch: lunch("12:00", "12:30"),
	}
	assertDec(t, "7.75", tmpl.Hours())

	s := tmpl.Apply("alice", date("2025-01-06"))
	assert.Equal(t, payroll.EmployeeID("alice"), s.EmployeeID)
	assert.Equal(t, payroll.TemplateID("open"), s.TemplateID)
	assertDec(t, "7.75", s.Hours())

	// The shift owns its own lunch copy
	s.Lunch.End = tm("13:00")
	assert.Equal(t, "12:30", tmpl.Lunch.End.String())
}
