package analytics

import (
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// AggregateTrends groups the records inside window into fixed-size buckets.
// Category totals count the active habits of each category and are the same
// in every bucket; category completions are per bucket.
func AggregateTrends(habits []*domain.Habit, records []*domain.HabitEntry, window domain.DateRange, groupBy BucketSize) []domain.TrendBucket {
	active := activeHabits(habits)
	categoryOf := make(map[string]domain.Category, len(active))
	habitsPerCategory := make(map[domain.Category]int)
	for _, h := range active {
		categoryOf[h.ID] = h.Category
		habitsPerCategory[h.Category]++
	}

	buckets := Partition(window.Start, window.End, groupBy)
	out := make([]domain.TrendBucket, len(buckets))
	for i, b := range buckets {
		cats := make(map[domain.Category]domain.CategoryBreakdown, len(habitsPerCategory))
		for c, n := range habitsPerCategory {
			cats[c] = domain.CategoryBreakdown{Total: n}
		}
		out[i] = domain.TrendBucket{
			PeriodStart: b.Start.Format(domain.DateLayout),
			PeriodEnd:   AddDays(b.End, -1).Format(domain.DateLayout),
			Categories:  cats,
		}
	}

	for _, r := range inWindow(usable(records), window) {
		i := bucketIndex(buckets, r)
		if i < 0 {
			continue
		}
		tb := &out[i]
		tb.TotalEntries++
		if !r.Completed {
			continue
		}
		tb.CompletedEntries++
		if c, ok := categoryOf[r.HabitID]; ok {
			cb := tb.Categories[c]
			cb.Completed++
			tb.Categories[c] = cb
		}
	}

	for i := range out {
		out[i].CompletionRate = percent(out[i].CompletedEntries, out[i].TotalEntries)
	}
	return out
}

// bucketIndex finds the bucket holding r, or -1.
func bucketIndex(buckets []domain.Bucket, r domain.HabitEntry) int {
	for i, b := range buckets {
		if !r.Date.Before(b.Start) && r.Date.Before(b.End) {
			return i
		}
	}
	return -1
}
