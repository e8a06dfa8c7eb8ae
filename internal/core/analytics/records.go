package analytics

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// day is one calendar day folded out of the record set.
type day struct {
	date      time.Time
	completed bool
}

// usable drops malformed records and normalizes the dates of the rest.
// The input slice and its records are left untouched.
func usable(records []*domain.HabitEntry) []domain.HabitEntry {
	out := make([]domain.HabitEntry, 0, len(records))
	for _, r := range records {
		if r == nil || !r.WellFormed() {
			continue
		}
		cp := *r
		cp.Date = NormalizeToDay(r.Date)
		out = append(out, cp)
	}
	return out
}

// inWindow keeps the records whose day lies inside r. A zero range keeps
// everything.
func inWindow(records []domain.HabitEntry, r domain.DateRange) []domain.HabitEntry {
	if r.Start.IsZero() && r.End.IsZero() {
		return records
	}
	out := make([]domain.HabitEntry, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

// foldDays collapses records to one entry per day, ascending. A day counts
// as completed if any of its records is.
func foldDays(records []domain.HabitEntry) []day {
	byKey := make(map[string]*day, len(records))
	for _, r := range records {
		key := r.Date.Format(domain.DateLayout)
		d, ok := byKey[key]
		if !ok {
			d = &day{date: r.Date}
			byKey[key] = d
		}
		d.completed = d.completed || r.Completed
	}

	days := make([]day, 0, len(byKey))
	for _, d := range byKey {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].date.Before(days[j].date)
	})
	return days
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	rate := float64(part) / float64(whole) * 100
	if rate > 100 {
		return 100
	}
	return rate
}
