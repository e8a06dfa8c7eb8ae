package analytics_test

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

var today = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func entry(habitID string, day time.Time, completed bool) *domain.HabitEntry {
	y, m, d := day.Date()
	return &domain.HabitEntry{
		HabitID:   habitID,
		Date:      time.Date(y, m, d, 0, 0, 0, 0, time.Local),
		Completed: completed,
	}
}

func completedDays(habitID string, ago ...int) []*domain.HabitEntry {
	out := make([]*domain.HabitEntry, 0, len(ago))
	for _, n := range ago {
		out = append(out, entry(habitID, daysAgo(n), true))
	}
	return out
}

func habit(id string, cat domain.Category) *domain.Habit {
	return &domain.Habit{
		ID:           id,
		Name:         "Habit " + id,
		Category:     cat,
		Color:        domain.DefaultColor,
		StreakTarget: domain.DefaultStreakTarget,
		Active:       true,
	}
}

func intPtr(v int) *int { return &v }
