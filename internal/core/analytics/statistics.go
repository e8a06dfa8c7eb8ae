package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type mean struct {
	sum   int
	count int
}

func (m *mean) add(v *int) {
	if v == nil {
		return
	}
	m.sum += *v
	m.count++
}

// value is nil when nothing was added, so callers can tell "no data" from 0.
func (m mean) value() *float64 {
	if m.count == 0 {
		return nil
	}
	v := float64(m.sum) / float64(m.count)
	return &v
}

// HabitStats summarises one habit's records inside window. The completion
// rate is relative to the days that were tracked, not to the window length.
func HabitStats(records []*domain.HabitEntry, window domain.DateRange) domain.CompletionStats {
	recs := inWindow(usable(records), window)

	var mood, difficulty mean
	completed := 0
	for _, r := range recs {
		if !r.Completed {
			continue
		}
		completed++
		mood.add(r.Mood)
		difficulty.add(r.Difficulty)
	}

	return domain.CompletionStats{
		TrackedDays:       len(recs),
		CompletedDays:     completed,
		CompletionRate:    percent(completed, len(recs)),
		AverageMood:       mood.value(),
		AverageDifficulty: difficulty.value(),
	}
}

// Overview aggregates every active habit of a user. Unlike HabitStats, the
// completion rate here is relative to all possible slots: one per active
// habit per day of the window, tracked or not.
//
// records may extend beyond window; the extra history only feeds the
// current streak of each habit.
func Overview(habits []*domain.Habit, records []*domain.HabitEntry, window domain.DateRange, today time.Time) domain.OverviewStats {
	days := WindowDays(window)
	todayKey := DayKey(today)

	out := domain.OverviewStats{
		WindowDays:  days,
		TotalHabits: len(habits),
		Categories:  make(map[domain.Category]domain.CategoryBreakdown),
		Habits:      make([]domain.HabitSummary, 0, len(habits)),
	}
	if days > 0 {
		out.StartDate = window.Start.Format(domain.DateLayout)
		out.EndDate = AddDays(window.End, -1).Format(domain.DateLayout)
	}

	byHabit := make(map[string][]*domain.HabitEntry)
	for _, r := range records {
		if r == nil {
			continue
		}
		byHabit[r.HabitID] = append(byHabit[r.HabitID], r)
	}

	var mood, difficulty mean
	for _, h := range activeHabits(habits) {
		out.ActiveHabits++

		cat := out.Categories[h.Category]
		cat.Total++

		all := byHabit[h.ID]
		completed := 0
		for _, r := range inWindow(usable(all), window) {
			out.TotalEntries++
			if !r.Completed {
				continue
			}
			completed++
			mood.add(r.Mood)
			difficulty.add(r.Difficulty)
		}
		for _, r := range usable(all) {
			if r.Completed && r.DayKey() == todayKey {
				out.CompletedToday++
				break
			}
		}

		cat.Completed += completed
		out.Categories[h.Category] = cat
		out.CompletedEntries += completed

		stats := HabitStats(all, window)
		streak := CurrentStreak(all, today)
		if streak > out.BestCurrentStreak {
			out.BestCurrentStreak = streak
		}

		out.Habits = append(out.Habits, domain.HabitSummary{
			HabitID:        h.ID,
			Name:           h.Name,
			Category:       h.Category,
			Color:          h.Color,
			CurrentStreak:  streak,
			CompletedDays:  stats.CompletedDays,
			CompletionRate: stats.CompletionRate,
		})
	}

	out.PossibleEntries = out.ActiveHabits * days
	out.CompletionRate = percent(out.CompletedEntries, out.PossibleEntries)
	out.AverageMood = mood.value()
	out.AverageDifficulty = difficulty.value()

	return out
}

func activeHabits(habits []*domain.Habit) []*domain.Habit {
	out := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h != nil && h.Active {
			out = append(out, h)
		}
	}
	return out
}
