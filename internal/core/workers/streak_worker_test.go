package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

var fixedNow = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)

type stubHabits struct {
	habit *domain.Habit
	err   error
}

func (s *stubHabits) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.habit, nil
}

type stubEntries struct {
	entries []*domain.HabitEntry
	err     error
}

func (s *stubEntries) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	return s.entries, s.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.StreakEvent
	err    error
}

func (n *recordingNotifier) NotifyStreak(ctx context.Context, event domain.StreakEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) received() []domain.StreakEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.StreakEvent(nil), n.events...)
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveStreakJob(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[string]int)
	}
	o.counts[status]++
}

func (o *countingObserver) get(status string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[status]
}

func completedOn(daysAgo ...int) []*domain.HabitEntry {
	out := make([]*domain.HabitEntry, 0, len(daysAgo))
	for _, n := range daysAgo {
		out = append(out, domain.NewHabitEntry("h1", "u1", fixedNow.AddDate(0, 0, -n), true))
	}
	return out
}

func TestStreakWorker_Recompute(t *testing.T) {
	habit := &domain.Habit{ID: "h1", UserID: "u1", Name: "Run", Active: true}

	tests := []struct {
		name    string
		entries []*domain.HabitEntry
		want    domain.StreakState
	}{
		{"Empty entries", nil, domain.StreakState{}},
		{"Single entry today", completedOn(0), domain.StreakState{CurrentStreak: 1, LongestStreak: 1}},
		{"Single entry yesterday (Streak still alive)", completedOn(1), domain.StreakState{CurrentStreak: 1, LongestStreak: 1}},
		{"Single entry 2 days ago (Streak broken)", completedOn(2), domain.StreakState{CurrentStreak: 0, LongestStreak: 1}},
		{"Perfect streak", completedOn(0, 1, 2), domain.StreakState{CurrentStreak: 3, LongestStreak: 3}},
		{"Broken then resumed", completedOn(0, 1, 5, 6, 7, 8), domain.StreakState{CurrentStreak: 2, LongestStreak: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			w := NewStreakWorker(&stubHabits{habit: habit}, &stubEntries{entries: tt.entries}, notifier,
				WithClock(func() time.Time { return fixedNow }))

			require.NoError(t, w.recompute(context.Background(), "h1"))

			events := notifier.received()
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Streak)
			assert.Equal(t, "u1", events[0].UserID)
			assert.Equal(t, "Run", events[0].HabitName)
		})
	}
}

func TestStreakWorker_Failures(t *testing.T) {
	habit := &domain.Habit{ID: "h1", UserID: "u1", Active: true}
	boom := errors.New("boom")

	t.Run("Habit lookup error is reported and nothing is published", func(t *testing.T) {
		notifier := &recordingNotifier{}
		obs := &countingObserver{}
		w := NewStreakWorker(&stubHabits{err: domain.ErrHabitNotFound}, &stubEntries{}, notifier, WithObserver(obs))

		w.processJob(context.Background(), StreakJob{HabitID: "h1"})

		assert.Empty(t, notifier.received())
		assert.Equal(t, 1, obs.get("failed"))
	})

	t.Run("Notifier error counts as failed", func(t *testing.T) {
		obs := &countingObserver{}
		w := NewStreakWorker(&stubHabits{habit: habit}, &stubEntries{}, &recordingNotifier{err: boom}, WithObserver(obs))

		w.processJob(context.Background(), StreakJob{HabitID: "h1"})

		assert.Equal(t, 1, obs.get("failed"))
		assert.Equal(t, 0, obs.get("processed"))
	})
}

func TestStreakWorker_EnqueueDropsWhenFull(t *testing.T) {
	obs := &countingObserver{}
	w := NewStreakWorker(&stubHabits{}, &stubEntries{}, &recordingNotifier{}, WithQueueSize(1), WithObserver(obs))

	w.Enqueue("a")
	w.Enqueue("b")
	w.Enqueue("c")

	assert.Len(t, w.jobs, 1)
	assert.Equal(t, 2, obs.get("dropped"))
}

func TestStreakWorker_StartProcessesQueue(t *testing.T) {
	habit := &domain.Habit{ID: "h1", UserID: "u1", Active: true}
	notifier := &recordingNotifier{}
	w := NewStreakWorker(&stubHabits{habit: habit}, &stubEntries{entries: completedOn(0)}, notifier,
		WithClock(func() time.Time { return fixedNow }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Enqueue("h1")

	assert.Eventually(t, func() bool {
		return len(notifier.received()) == 1
	}, time.Second, 10*time.Millisecond)
}
