package core

import "time"

// MonthRange returns the first and last instant (millisecond precision) of
// the given calendar month in loc.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// YearRange returns the first and last instant of the given calendar year in loc.
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0).Add(-time.Millisecond)
	return start, end
}

// ResolvePeriod fills missing month/year with the calendar month of now.
func ResolvePeriod(month, year *int, now time.Time) (int, int) {
	m, y := int(now.Month()), now.Year()
	if month != nil {
		m = *month
	}
	if year != nil {
		y = *year
	}
	return m, y
}
