package domain

import "time"

// WeekStart returns Monday 00:00 of the calendar week containing t, in t's
// location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}
