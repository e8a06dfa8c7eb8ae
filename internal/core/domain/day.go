package domain

import "time"

// DayStart is the first instant of the local calendar day y-m-d. d may
// run past the end of the month, as with time.Date. In zones where a DST
// change skips midnight the day starts at the transition instead.
func DayStart(y int, m time.Month, d int) time.Time {
	y, m, d = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Date()

	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	if _, _, got := t.Date(); got != d {
		// time.Date resolved the missing midnight to the previous evening.
		_, t = t.ZoneBounds()
	}
	return t
}

// DayOf is the start of the local calendar day containing t.
func DayOf(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return DayStart(y, m, d)
}
