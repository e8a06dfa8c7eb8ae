// Package analytics turns completion records into streaks, rates, heatmaps,
// trend buckets and insights.
//
// Every function is pure: it reads its arguments, allocates its result and
// touches nothing else. Callers load the data, pass it in and decide what to
// do with the output, so the package is safe for concurrent use.
package analytics

import (
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type BucketSize string

const (
	BucketDay   BucketSize = "day"
	BucketWeek  BucketSize = "week"
	BucketMonth BucketSize = "month"
)

const (
	DefaultWindowDays = 30
	DefaultPeriod     = "month"
)

var bucketDays = map[BucketSize]int{
	BucketDay:   1,
	BucketWeek:  7,
	BucketMonth: 30,
}

var periodDays = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
	"year":    365,
}

// NormalizeToDay drops the time of day, using the local calendar.
func NormalizeToDay(t time.Time) time.Time {
	return domain.DayOf(t)
}

// AddDays moves n calendar days from the local day containing t. Unlike
// AddDate it always lands on the start of a day, also across DST changes
// that skip midnight.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.In(time.Local).Date()
	return domain.DayStart(y, m, d+n)
}

// DayKey is the YYYY-MM-DD form of the local day containing t.
func DayKey(t time.Time) string {
	return NormalizeToDay(t).Format(domain.DateLayout)
}

// ParseDay reads a YYYY-MM-DD string as a local calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.DayStart(t.Date()), nil
}

// DaysBetween counts calendar days from start to end. It counts on civil
// day numbers, so neither DST changes nor the range of time.Duration skew
// the result.
func DaysBetween(start, end time.Time) int {
	return int(dayNumber(end) - dayNumber(start))
}

func dayNumber(t time.Time) int64 {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

// PeriodDays maps a trend period to its day count. Unknown periods fall
// back to the month mapping.
func PeriodDays(period string) int {
	if days, ok := periodDays[strings.ToLower(strings.TrimSpace(period))]; ok {
		return days
	}
	return periodDays[DefaultPeriod]
}

// NormalizePeriod returns the period name PeriodDays actually used.
func NormalizePeriod(period string) string {
	p := strings.ToLower(strings.TrimSpace(period))
	if _, ok := periodDays[p]; ok {
		return p
	}
	return DefaultPeriod
}

// ParseGroupBy accepts day, week or month; anything else groups by day.
func ParseGroupBy(groupBy string) BucketSize {
	size := BucketSize(strings.ToLower(strings.TrimSpace(groupBy)))
	if _, ok := bucketDays[size]; ok {
		return size
	}
	return BucketDay
}

// ResolveWindow turns a window request into a half-open day range.
//
// With explicit dates the range runs from StartDate through EndDate
// inclusive; a start after the end gives an empty range. Otherwise the
// range holds the last Days days ending today, with non-positive Days
// replaced by DefaultWindowDays.
func ResolveWindow(w domain.AnalyticsWindow, now time.Time) domain.DateRange {
	if !w.StartDate.IsZero() && !w.EndDate.IsZero() {
		start := NormalizeToDay(w.StartDate)
		end := AddDays(w.EndDate, 1)
		if !start.Before(end) {
			return domain.DateRange{Start: start, End: start}
		}
		return domain.DateRange{Start: start, End: end}
	}

	days := w.Days
	if days <= 0 {
		days = DefaultWindowDays
	}

	end := AddDays(now, 1)
	return domain.DateRange{Start: AddDays(end, -days), End: end}
}

// WindowDays is the number of calendar days in r.
func WindowDays(r domain.DateRange) int {
	if !r.Start.Before(r.End) {
		return 0
	}
	return DaysBetween(r.Start, r.End)
}

// Partition splits [start, end) into consecutive fixed-size buckets,
// generated forward from start. The last bucket is clipped to end.
func Partition(start, end time.Time, size BucketSize) []domain.Bucket {
	step, ok := bucketDays[size]
	if !ok {
		step = 1
	}

	start = NormalizeToDay(start)
	end = NormalizeToDay(end)

	buckets := make([]domain.Bucket, 0)
	for cur := start; cur.Before(end); cur = AddDays(cur, step) {
		next := AddDays(cur, step)
		if next.After(end) {
			next = end
		}
		buckets = append(buckets, domain.Bucket{Start: cur, End: next})
	}
	return buckets
}
