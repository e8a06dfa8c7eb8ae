package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// The in-memory repositories back the "memory" driver and the end-to-end
// tests. They store copies, so callers never share state with the store.

type InMemoryHabitRepository struct {
	store   map[string]*domain.Habit
	entries *InMemoryEntryRepository

	mu sync.RWMutex
}

// NewInMemoryHabitRepository returns an empty store. entries may be nil;
// when set, deleting a habit also deletes its entries.
func NewInMemoryHabitRepository(entries *InMemoryEntryRepository) *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store:   make(map[string]*domain.Habit),
		entries: entries,
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[habit.ID]; exists {
		return domain.ErrHabitConflict
	}
	habit.Version = 1
	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(r.store, id)

	if r.entries != nil {
		r.entries.deleteByHabitID(id)
	}
	return nil
}

type InMemoryEntryRepository struct {
	store map[string]*domain.HabitEntry
	byDay map[string]string

	mu sync.RWMutex
}

func NewInMemoryEntryRepository() *InMemoryEntryRepository {
	return &InMemoryEntryRepository{
		store: make(map[string]*domain.HabitEntry),
		byDay: make(map[string]string),
	}
}

func dayIndexKey(habitID string, day time.Time) string {
	return habitID + "|" + analytics.DayKey(day)
}

func (r *InMemoryEntryRepository) Upsert(ctx context.Context, entry *domain.HabitEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	entry.Date = analytics.NormalizeToDay(entry.Date)
	key := dayIndexKey(entry.HabitID, entry.Date)

	if id, ok := r.byDay[key]; ok {
		existing := r.store[id]
		existing.Completed = entry.Completed
		existing.Notes = entry.Notes
		existing.Value = entry.Value
		existing.Mood = entry.Mood
		existing.Difficulty = entry.Difficulty
		existing.Version++
		existing.UpdatedAt = now
		*entry = *existing
		return nil
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Version = 1
	entry.CreatedAt = now
	entry.UpdatedAt = now

	clone := *entry
	r.store[entry.ID] = &clone
	r.byDay[key] = entry.ID
	return nil
}

func (r *InMemoryEntryRepository) Update(ctx context.Context, entry *domain.HabitEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[entry.ID]
	if !ok {
		return domain.ErrEntryNotFound
	}
	if stored.Version != entry.Version {
		return domain.ErrEntryConflict
	}

	stored.Completed = entry.Completed
	stored.Notes = entry.Notes
	stored.Value = entry.Value
	stored.Mood = entry.Mood
	stored.Difficulty = entry.Difficulty
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()

	entry.Version = stored.Version
	entry.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *InMemoryEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.store[id]
	if !ok || e.UserID != userID {
		return domain.ErrEntryNotFound
	}
	delete(r.store, id)
	delete(r.byDay, dayIndexKey(e.HabitID, e.Date))
	return nil
}

func (r *InMemoryEntryRepository) GetByID(ctx context.Context, id string) (*domain.HabitEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.store[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *InMemoryEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	out := r.filter(func(e *domain.HabitEntry) bool { return e.HabitID == habitID }, from, to)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *InMemoryEntryRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	out := r.filter(func(e *domain.HabitEntry) bool { return e.UserID == userID }, from, to)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].HabitID < out[j].HabitID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// filter keeps entries matching keep whose day lies in [from, to]; zero
// bounds are open.
func (r *InMemoryEntryRepository) filter(keep func(*domain.HabitEntry) bool, from, to time.Time) []*domain.HabitEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo := dayBound(from, minEntryDay)
	hi := dayBound(to, maxEntryDay)

	out := []*domain.HabitEntry{}
	for _, e := range r.store {
		if !keep(e) {
			continue
		}
		day := analytics.DayKey(e.Date)
		if day < lo || day > hi {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	return out
}

func (r *InMemoryEntryRepository) deleteByHabitID(habitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.store {
		if e.HabitID == habitID {
			delete(r.store, id)
			delete(r.byDay, dayIndexKey(e.HabitID, e.Date))
		}
	}
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return domain.ErrEmailAlreadyExists
	}
	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}
