package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// AnalyticsRecorder receives the duration of every analytics computation.
type AnalyticsRecorder interface {
	ObserveAnalytics(operation string, elapsed time.Duration)
}

type AnalyticsService struct {
	habitRepo domain.HabitRepository
	entryRepo domain.HabitEntryRepository
	now       func() time.Time
	recorder  AnalyticsRecorder
}

type AnalyticsOption func(*AnalyticsService)

func WithAnalyticsClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) { s.now = now }
}

func WithAnalyticsRecorder(r AnalyticsRecorder) AnalyticsOption {
	return func(s *AnalyticsService) { s.recorder = r }
}

func NewAnalyticsService(habitRepo domain.HabitRepository, entryRepo domain.HabitEntryRepository, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		habitRepo: habitRepo,
		entryRepo: entryRepo,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview aggregates every active habit of the user over the window.
// Entries are loaded from the beginning of time so current streaks are not
// cut at the window start.
func (s *AnalyticsService) Overview(ctx context.Context, userID string, window domain.AnalyticsWindow) (*domain.OverviewStats, error) {
	defer s.observe("overview", time.Now())

	now := s.now()
	r := analytics.ResolveWindow(window, now)

	var (
		habits  []*domain.Habit
		entries []*domain.HabitEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		habits, err = s.habitRepo.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		entries, err = s.entryRepo.ListByUserID(gctx, userID, time.Time{}, lastDay(r, now))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := analytics.Overview(habits, entries, r, now)
	return &out, nil
}

// HabitAnalytics returns the habit together with its analytics. Habits of
// other users yield ErrUnauthorized.
func (s *AnalyticsService) HabitAnalytics(ctx context.Context, userID, habitID string, window domain.AnalyticsWindow) (*domain.Habit, *domain.HabitAnalytics, error) {
	defer s.observe("habit", time.Now())

	now := s.now()
	r := analytics.ResolveWindow(window, now)

	var (
		habit   *domain.Habit
		entries []*domain.HabitEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		habit, err = s.habitRepo.GetByID(gctx, habitID)
		return err
	})
	g.Go(func() (err error) {
		entries, err = s.entryRepo.ListByHabitID(gctx, habitID, time.Time{}, lastDay(r, now))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if habit.UserID != userID {
		return nil, nil, domain.ErrUnauthorized
	}

	out := analytics.AnalyzeHabit(habit, entries, r, now)
	return habit, &out, nil
}

// Heatmap covers every day of year; a zero year means the current one.
// The active habits are returned alongside for legends.
func (s *AnalyticsService) Heatmap(ctx context.Context, userID string, year int) (*domain.Heatmap, []*domain.Habit, error) {
	defer s.observe("heatmap", time.Now())

	if year == 0 {
		year = s.now().Year()
	}
	span := analytics.YearRange(year)

	habits, entries, err := s.load(ctx, userID, span)
	if err != nil {
		return nil, nil, err
	}

	out := analytics.BuildHeatmap(year, habits, entries)
	return &out, activeOnly(habits), nil
}

// Trends buckets the last period of activity. Unknown period or groupBy
// values fall back to "month" and "day".
func (s *AnalyticsService) Trends(ctx context.Context, userID, period, groupBy string) (*domain.TrendReport, []*domain.Habit, error) {
	defer s.observe("trends", time.Now())

	period = analytics.NormalizePeriod(period)
	size := analytics.ParseGroupBy(groupBy)
	r := analytics.ResolveWindow(domain.AnalyticsWindow{Days: analytics.PeriodDays(period)}, s.now())

	habits, entries, err := s.load(ctx, userID, r)
	if err != nil {
		return nil, nil, err
	}

	active := activeOnly(habits)
	ids := make(map[string]struct{}, len(active))
	for _, h := range active {
		ids[h.ID] = struct{}{}
	}
	kept := make([]*domain.HabitEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := ids[e.HabitID]; ok {
			kept = append(kept, e)
		}
	}

	return &domain.TrendReport{
		Period:  period,
		GroupBy: string(size),
		Buckets: analytics.AggregateTrends(habits, kept, r, size),
	}, active, nil
}

func (s *AnalyticsService) load(ctx context.Context, userID string, r domain.DateRange) ([]*domain.Habit, []*domain.HabitEntry, error) {
	var (
		habits  []*domain.Habit
		entries []*domain.HabitEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		habits, err = s.habitRepo.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		if !r.Start.Before(r.End) {
			return nil
		}
		entries, err = s.entryRepo.ListByUserID(gctx, userID, r.Start, analytics.AddDays(r.End, -1))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return habits, entries, nil
}

func (s *AnalyticsService) observe(operation string, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveAnalytics(operation, time.Since(start))
	}
}

// lastDay is the later of the window's last day and today, the upper bound
// for history reads.
func lastDay(r domain.DateRange, now time.Time) time.Time {
	today := analytics.NormalizeToDay(now)
	if r.End.IsZero() {
		return today
	}
	last := analytics.AddDays(r.End, -1)
	if last.After(today) {
		return last
	}
	return today
}

func activeOnly(habits []*domain.Habit) []*domain.Habit {
	out := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Active {
			out = append(out, h)
		}
	}
	return out
}
