package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// YearRange is the half-open range covering every day of year.
func YearRange(year int) domain.DateRange {
	return domain.DateRange{
		Start: domain.DayStart(year, time.January, 1),
		End:   domain.DayStart(year+1, time.January, 1),
	}
}

// BuildHeatmap returns one cell per day of year, in date order. Cells are
// created for every day before any record is folded in, so the output has
// no gaps however sparse the tracking is. Only records of active habits
// are counted.
func BuildHeatmap(year int, habits []*domain.Habit, records []*domain.HabitEntry) domain.Heatmap {
	active := activeHabits(habits)
	byID := make(map[string]*domain.Habit, len(active))
	for _, h := range active {
		byID[h.ID] = h
	}

	span := YearRange(year)
	cells := make([]domain.HeatmapCell, 0, 366)
	index := make(map[string]int, 366)
	for d := span.Start; d.Before(span.End); d = AddDays(d, 1) {
		key := d.Format(domain.DateLayout)
		index[key] = len(cells)
		cells = append(cells, domain.HeatmapCell{
			Date:        key,
			TotalHabits: len(active),
			Habits:      []domain.HeatmapHabitDetail{},
		})
	}

	for _, r := range inWindow(usable(records), span) {
		h, ok := byID[r.HabitID]
		if !ok {
			continue
		}
		cell := &cells[index[r.DayKey()]]
		cell.Habits = append(cell.Habits, domain.HeatmapHabitDetail{
			HabitID:   h.ID,
			Name:      h.Name,
			Color:     h.Color,
			Category:  h.Category,
			Completed: r.Completed,
		})
		if r.Completed {
			cell.CompletedHabits++
		}
	}

	for i := range cells {
		cells[i].CompletionRate = percent(cells[i].CompletedHabits, cells[i].TotalHabits)
	}

	return domain.Heatmap{Year: year, Days: cells}
}
