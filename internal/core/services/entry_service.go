package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// StreakQueue schedules a streak recomputation for a habit.
type StreakQueue interface {
	Enqueue(habitID string)
}

type noQueue struct{}

func (noQueue) Enqueue(string) {}

type EntryService struct {
	repo      domain.HabitEntryRepository
	habitRepo domain.HabitRepository
	worker    StreakQueue
}

// NewEntryService wires the service; a nil worker disables streak updates.
func NewEntryService(repo domain.HabitEntryRepository, habitRepo domain.HabitRepository, worker StreakQueue) *EntryService {
	if worker == nil {
		worker = noQueue{}
	}
	return &EntryService{
		repo:      repo,
		habitRepo: habitRepo,
		worker:    worker,
	}
}

type TrackEntryInput struct {
	HabitID    string
	UserID     string
	Date       time.Time
	Completed  bool
	Notes      string
	Value      *int
	Mood       *int
	Difficulty *int
}

// UpdateEntryInput is a partial update; nil fields keep the stored value.
type UpdateEntryInput struct {
	ID         string
	UserID     string
	Completed  *bool
	Notes      *string
	Value      *int
	Mood       *int
	Difficulty *int
	Version    int
}

// Track records the habit for one day. Tracking the same day again
// replaces the earlier record.
func (s *EntryService) Track(ctx context.Context, input TrackEntryInput) (*domain.HabitEntry, error) {
	entry := domain.NewHabitEntry(input.HabitID, input.UserID, input.Date, input.Completed)
	entry.Notes = input.Notes
	entry.Value = input.Value
	entry.Mood = input.Mood
	entry.Difficulty = input.Difficulty

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	habit, err := s.habitRepo.GetByID(ctx, entry.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != entry.UserID {
		return nil, domain.ErrUnauthorized
	}
	if !habit.Active {
		return nil, domain.ErrHabitArchived
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	s.worker.Enqueue(entry.HabitID)

	return entry, nil
}

func (s *EntryService) Update(ctx context.Context, input UpdateEntryInput) (*domain.HabitEntry, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrEntryConflict
	}

	if input.Completed != nil {
		existing.Completed = *input.Completed
	}
	if input.Notes != nil {
		existing.Notes = *input.Notes
	}
	if input.Value != nil {
		existing.Value = input.Value
	}
	if input.Mood != nil {
		existing.Mood = input.Mood
	}
	if input.Difficulty != nil {
		existing.Difficulty = input.Difficulty
	}

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.worker.Enqueue(existing.HabitID)

	return existing, nil
}

func (s *EntryService) GetByID(ctx context.Context, id string, userID string) (*domain.HabitEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return entry, nil
}

// ListByHabitID returns the habit's entries between from and to inclusive,
// newest first.
func (s *EntryService) ListByHabitID(ctx context.Context, habitID string, userID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

func (s *EntryService) Delete(ctx context.Context, id string, userID string) error {
	entry, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.worker.Enqueue(entry.HabitID)

	return nil
}
