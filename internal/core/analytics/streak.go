package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// CurrentStreak counts consecutive completed days ending today. A today
// that has not been completed yet does not break the streak: counting then
// starts from yesterday. A missing day and a day recorded as not completed
// both end the streak.
func CurrentStreak(records []*domain.HabitEntry, today time.Time) int {
	completed := make(map[string]bool)
	for _, d := range foldDays(usable(records)) {
		if d.completed {
			completed[d.date.Format(domain.DateLayout)] = true
		}
	}

	anchor := NormalizeToDay(today)
	if !completed[anchor.Format(domain.DateLayout)] {
		anchor = AddDays(anchor, -1)
	}

	streak := 0
	for completed[anchor.Format(domain.DateLayout)] {
		streak++
		anchor = AddDays(anchor, -1)
	}
	return streak
}

// LongestStreak is the longest run of consecutive completed days inside
// window. Runs reset on a day recorded as not completed and on any calendar
// gap between two records, so callers that only store completed days still
// get correct results. A zero window scans every record.
func LongestStreak(records []*domain.HabitEntry, window domain.DateRange) int {
	days := foldDays(inWindow(usable(records), window))

	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && DaysBetween(days[i-1].date, d.date) != 1 {
			run = 0
		}
		if d.completed {
			run++
		} else {
			run = 0
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func Streaks(records []*domain.HabitEntry, window domain.DateRange, today time.Time) domain.StreakState {
	return domain.StreakState{
		CurrentStreak: CurrentStreak(records, today),
		LongestStreak: LongestStreak(records, window),
	}
}
