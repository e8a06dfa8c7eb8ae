package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	UserID       string
	Name         string
	Description  string
	Category     string
	Color        string
	StreakTarget int
}

// UpdateHabitInput is a partial update: empty strings and a zero target
// keep the stored value. Version, when set, must match the stored one.
type UpdateHabitInput struct {
	ID           string
	UserID       string
	Name         string
	Description  *string
	Category     string
	Color        string
	StreakTarget int
	Version      int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, domain.HabitAttributes{
		Name:         input.Name,
		Description:  input.Description,
		Category:     domain.Category(input.Category),
		Color:        input.Color,
		StreakTarget: input.StreakTarget,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// ListByUserID returns the user's habits; archived ones only when asked.
func (s *HabitService) ListByUserID(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if includeArchived {
		return habits, nil
	}

	active := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Active {
			active = append(active, h)
		}
	}
	return active, nil
}

// GetByID hides habits of other users behind ErrHabitNotFound.
func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	desc := habit.Description
	if input.Description != nil {
		desc = *input.Description
	}
	target := habit.StreakTarget
	if input.StreakTarget != 0 {
		target = input.StreakTarget
	}

	err = habit.Update(domain.HabitAttributes{
		Name:         mergeString(input.Name, habit.Name),
		Description:  desc,
		Category:     domain.Category(mergeString(input.Category, string(habit.Category))),
		Color:        mergeString(input.Color, habit.Color),
		StreakTarget: target,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Archive hides a habit from analytics without losing its history.
func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return s.setActive(ctx, id, userID, false)
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return s.setActive(ctx, id, userID, true)
}

func (s *HabitService) setActive(ctx context.Context, id, userID string, active bool) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if habit.Active == active {
		return habit, nil
	}

	if active {
		habit.Restore()
	} else {
		habit.Archive()
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
