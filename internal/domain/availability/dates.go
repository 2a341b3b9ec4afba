package availability

import "time"

// DateOnly normalizes t to UTC midnight of its calendar day in t's own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a stored availability date and a user-selected time
// fall on the same calendar day. The stored value is read as a UTC day, the
// selected value as a day in its own location.
func SameDay(stored, selected time.Time) bool {
	sy, sm, sd := stored.UTC().Date()
	y, m, d := selected.Date()
	return sy == y && sm == m && sd == d
}

// FindByDate returns the entry for the selected day, if any.
func FindByDate(list []Availability, selected time.Time) (*Availability, bool) {
	for i := range list {
		if SameDay(list[i].AvailableDate, selected) {
			return &list[i], true
		}
	}
	return nil, false
}

// MonthRange returns [first day, first day of next month) in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
