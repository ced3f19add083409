package payroll

var (
	lunchCutoff       = MustTime(16, 0)
	defaultLunchStart = MustTime(15, 0)
	defaultLunchEnd   = MustTime(16, 0)
)

// DefaultLunch proposes the lunch for a shift being scheduled: 15:00-16:00,
// unless the shift starts at or after 16:00 or ends at or before 16:00.
// Only whole hours are compared, so a shift ending 16:45 still ends "at 16".
func DefaultLunch(start, end TimeOfDay) *LunchBreak {
	if start.Hour() >= lunchCutoff.Hour() || end.Hour() <= lunchCutoff.Hour() {
		return nil
	}
	return &LunchBreak{Start: defaultLunchStart, End: defaultLunchEnd}
}
