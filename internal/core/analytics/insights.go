package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// Milestones are the streak lengths worth celebrating, ascending.
var Milestones = []int{7, 14, 21, 30, 60, 90, 180, 365}

const recentRecords = 7

// Insights applies the fixed rule set to already computed statistics.
// Rules are evaluated in a fixed order and each one may add one message:
// completion rate band, streak band, recent consistency.
func Insights(stats domain.CompletionStats, streak domain.StreakState, records []*domain.HabitEntry) []domain.Insight {
	out := make([]domain.Insight, 0, 3)

	rate := stats.CompletionRate
	switch {
	case rate >= 80:
		out = append(out, domain.Insight{
			Type:    domain.InsightSuccess,
			Title:   "Excellent consistency!",
			Message: fmt.Sprintf("You completed this habit on %.0f%% of tracked days. Keep it up!", rate),
		})
	case rate >= 60:
		out = append(out, domain.Insight{
			Type:    domain.InsightWarning,
			Title:   "Good progress",
			Message: fmt.Sprintf("You are at %.0f%% completion. A little push gets you above 80%%.", rate),
		})
	case rate < 40:
		out = append(out, domain.Insight{
			Type:    domain.InsightDanger,
			Title:   "Needs attention",
			Message: fmt.Sprintf("Completion is at %.0f%%. Try a smaller daily goal or a reminder.", rate),
		})
	}

	switch {
	case streak.CurrentStreak >= 7:
		out = append(out, domain.Insight{
			Type:    domain.InsightSuccess,
			Title:   "Streak going strong",
			Message: fmt.Sprintf("%d days in a row. Don't break the chain!", streak.CurrentStreak),
		})
	case streak.CurrentStreak == 0:
		out = append(out, domain.Insight{
			Type:    domain.InsightInfo,
			Title:   "Start building your streak",
			Message: "Complete this habit today to start building your streak.",
		})
	}

	recent := latest(usable(records), recentRecords)
	done := 0
	for _, r := range recent {
		if r.Completed {
			done++
		}
	}
	// done > 0.8 * len, kept in integers.
	if done*10 > len(recent)*8 {
		out = append(out, domain.Insight{
			Type:    domain.InsightSuccess,
			Title:   "Great recent performance",
			Message: fmt.Sprintf("You completed %d of your last %d check-ins.", done, len(recent)),
		})
	}

	return out
}

// latest returns the n most recent records, newest first.
func latest(records []domain.HabitEntry, n int) []domain.HabitEntry {
	sorted := make([]domain.HabitEntry, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Predict projects when the habit reaches its streak target and which
// milestone comes next. ProbabilityOfSuccess is the rounded completion
// rate of the analysed window.
func Predict(habit *domain.Habit, streak domain.StreakState, stats domain.CompletionStats, today time.Time) domain.Prediction {
	target := domain.DefaultStreakTarget
	if habit != nil && habit.StreakTarget >= 1 {
		target = habit.StreakTarget
	}

	p := domain.Prediction{
		StreakTarget:  target,
		CurrentStreak: streak.CurrentStreak,
		DaysRemaining: max(0, target-streak.CurrentStreak),
	}

	if p.DaysRemaining > 0 {
		date := AddDays(today, p.DaysRemaining).Format(domain.DateLayout)
		p.EstimatedDate = &date
	}

	p.NextMilestone = NextMilestone(streak.CurrentStreak)

	if stats.CompletedDays > 0 {
		p.ProbabilityOfSuccess = int(math.Round(percent(stats.CompletedDays, stats.TrackedDays)))
	}

	return p
}

// NextMilestone is the first milestone strictly above current, or nil once
// every milestone has been passed.
func NextMilestone(current int) *domain.Milestone {
	for _, m := range Milestones {
		if m > current {
			return &domain.Milestone{Days: m, Remaining: m - current}
		}
	}
	return nil
}

// AnalyzeHabit runs every per-habit computation over the records of one
// habit. records may reach back before window; only the current streak
// looks at that history.
func AnalyzeHabit(habit *domain.Habit, records []*domain.HabitEntry, window domain.DateRange, today time.Time) domain.HabitAnalytics {
	windowed := make([]*domain.HabitEntry, 0, len(records))
	for _, r := range records {
		if r != nil && window.Contains(NormalizeToDay(r.Date)) {
			windowed = append(windowed, r)
		}
	}

	streak := Streaks(records, window, today)
	stats := HabitStats(windowed, window)

	out := domain.HabitAnalytics{
		WindowDays: WindowDays(window),
		Streak:     streak,
		Stats:      stats,
		Insights:   Insights(stats, streak, windowed),
		Prediction: Predict(habit, streak, stats, today),
	}
	if out.WindowDays > 0 {
		out.StartDate = window.Start.Format(domain.DateLayout)
		out.EndDate = AddDays(window.End, -1).Format(domain.DateLayout)
	}
	return out
}
