package weeklytarget

import "time"

// WeekStartFor returns the most recent Sunday at 00:00 in t's location.
// A Sunday input maps to itself at midnight.
func WeekStartFor(t time.Time) time.Time {
	daysSinceSunday := int(t.Weekday())
	d := t.AddDate(0, 0, -daysSinceSunday)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// WeekEndFor returns the Saturday 23:59:59.999 that closes the week
// containing t.
func WeekEndFor(t time.Time) time.Time {
	start := WeekStartFor(t)
	end := start.AddDate(0, 0, 6)
	return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), end.Location())
}

// PreviousWeekStart returns the start of the week immediately before the one
// containing t. This is the lookback address used to pick up a carried-over
// shortfall.
func PreviousWeekStart(t time.Time) time.Time {
	return WeekStartFor(t).AddDate(0, 0, -7)
}
