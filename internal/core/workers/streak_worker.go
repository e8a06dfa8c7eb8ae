package workers

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/logger"
)

const defaultQueueSize = 100

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
}

type EntryRepository interface {
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitEntry, error)
}

// Notifier receives the recomputed streak of a habit. Implementations push
// it to connected clients; the worker does not care how.
type Notifier interface {
	NotifyStreak(ctx context.Context, event domain.StreakEvent) error
}

// JobObserver is told how each job ended: "processed", "failed" or "dropped".
type JobObserver interface {
	ObserveStreakJob(status string)
}

type StreakJob struct {
	HabitID string
}

type StreakWorker struct {
	habitRepo HabitRepository
	entryRepo EntryRepository
	notifier  Notifier
	observer  JobObserver
	now       func() time.Time
	jobs      chan StreakJob
}

type Option func(*StreakWorker)

func WithClock(now func() time.Time) Option {
	return func(w *StreakWorker) { w.now = now }
}

func WithObserver(o JobObserver) Option {
	return func(w *StreakWorker) { w.observer = o }
}

func WithQueueSize(n int) Option {
	return func(w *StreakWorker) {
		if n > 0 {
			w.jobs = make(chan StreakJob, n)
		}
	}
}

func NewStreakWorker(hRepo HabitRepository, eRepo EntryRepository, notifier Notifier, opts ...Option) *StreakWorker {
	w := &StreakWorker{
		habitRepo: hRepo,
		entryRepo: eRepo,
		notifier:  notifier,
		now:       time.Now,
		jobs:      make(chan StreakJob, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		logger.Info("streak worker started", "queue_size", cap(w.jobs))
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				logger.Info("streak worker shutting down")
				return
			}
		}
	}()
}

// Enqueue never blocks. A full queue drops the job.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		logger.Warn("streak worker queue full, dropping job", "habit_id", habitID)
		w.observe("dropped")
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	if err := w.recompute(ctx, job.HabitID); err != nil {
		logger.Error("streak recompute failed", "habit_id", job.HabitID, "error", err)
		w.observe("failed")
		return
	}
	w.observe("processed")
}

func (w *StreakWorker) recompute(ctx context.Context, habitID string) error {
	habit, err := w.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}

	now := w.now()
	entries, err := w.entryRepo.ListByHabitID(ctx, habitID, time.Time{}, now)
	if err != nil {
		return err
	}

	streak := analytics.Streaks(entries, domain.DateRange{}, now)

	event := domain.StreakEvent{
		UserID:     habit.UserID,
		HabitID:    habit.ID,
		HabitName:  habit.Name,
		Streak:     streak,
		ComputedAt: now.UTC(),
	}
	if err := w.notifier.NotifyStreak(ctx, event); err != nil {
		return err
	}

	logger.Debug("streak recomputed",
		"habit_id", habit.ID,
		"current", streak.CurrentStreak,
		"longest", streak.LongestStreak,
	)
	return nil
}

func (w *StreakWorker) observe(status string) {
	if w.observer != nil {
		w.observer.ObserveStreakJob(status)
	}
}
