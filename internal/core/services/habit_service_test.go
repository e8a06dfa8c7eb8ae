package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
)

func TestHabitService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Should create and persist a valid habit", func(t *testing.T) {
		repo := NewMockHabitRepo()
		svc := services.NewHabitService(repo)

		created, err := svc.Create(ctx, services.CreateHabitInput{
			UserID:   "user-1",
			Name:     "Read Book",
			Category: "learning",
		})

		require.NoError(t, err)
		assert.Equal(t, "Read Book", created.Name)
		assert.Equal(t, domain.CategoryLearning, created.Category)
		assert.Equal(t, 1, created.Version)

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, stored.ID)
	})

	t.Run("Fail: Validation errors are returned before persisting", func(t *testing.T) {
		repo := NewMockHabitRepo()
		svc := services.NewHabitService(repo)

		_, err := svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Name: "x", Category: "hobby"})

		assert.ErrorIs(t, err, domain.ErrInvalidCategory)
		list, _ := repo.ListByUserID(ctx, "user-1")
		assert.Empty(t, list)
	})

	t.Run("Fail: Repository error is propagated", func(t *testing.T) {
		repo := NewMockHabitRepo()
		repo.simulateError = errors.New("db down")

		_, err := services.NewHabitService(repo).Create(ctx, services.CreateHabitInput{UserID: "user-1", Name: "x"})

		assert.EqualError(t, err, "db down")
	})
}

func TestHabitService_ListByUserID(t *testing.T) {
	ctx := context.Background()
	active := &domain.Habit{ID: "a", UserID: "u1", Active: true}
	archived := &domain.Habit{ID: "b", UserID: "u1", Active: false}
	foreign := &domain.Habit{ID: "c", UserID: "u2", Active: true}
	svc := services.NewHabitService(NewMockHabitRepo(active, archived, foreign))

	list, err := svc.ListByUserID(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	all, err := svc.ListByUserID(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHabitService_Update(t *testing.T) {
	ctx := context.Background()
	seed := func() *domain.Habit {
		return &domain.Habit{
			ID: "h1", UserID: "u1", Name: "Read", Description: "pages",
			Category: domain.CategoryLearning, Color: domain.DefaultColor,
			StreakTarget: 7, Active: true, Version: 1,
		}
	}

	t.Run("Success: Partial update keeps untouched fields", func(t *testing.T) {
		repo := NewMockHabitRepo(seed())
		svc := services.NewHabitService(repo)

		updated, err := svc.Update(ctx, services.UpdateHabitInput{ID: "h1", UserID: "u1", StreakTarget: 30, Version: 1})

		require.NoError(t, err)
		assert.Equal(t, "Read", updated.Name)
		assert.Equal(t, "pages", updated.Description)
		assert.Equal(t, 30, updated.StreakTarget)
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("Success: Description can be cleared", func(t *testing.T) {
		svc := services.NewHabitService(NewMockHabitRepo(seed()))

		updated, err := svc.Update(ctx, services.UpdateHabitInput{ID: "h1", UserID: "u1", Description: ptr("")})

		require.NoError(t, err)
		assert.Empty(t, updated.Description)
	})

	t.Run("Fail: Stale version", func(t *testing.T) {
		svc := services.NewHabitService(NewMockHabitRepo(seed()))

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: "h1", UserID: "u1", Name: "x", Version: 5})

		assert.ErrorIs(t, err, domain.ErrHabitConflict)
	})

	t.Run("Fail: Other user's habit looks missing", func(t *testing.T) {
		svc := services.NewHabitService(NewMockHabitRepo(seed()))

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: "h1", UserID: "intruder", Name: "x"})

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Fail: Archived habits cannot be edited", func(t *testing.T) {
		h := seed()
		h.Active = false
		svc := services.NewHabitService(NewMockHabitRepo(h))

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: "h1", UserID: "u1", Name: "x"})

		assert.ErrorIs(t, err, domain.ErrHabitArchived)
	})
}

func TestHabitService_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	repo := NewMockHabitRepo(&domain.Habit{ID: "h1", UserID: "u1", Name: "Run", Active: true, Version: 1})
	svc := services.NewHabitService(repo)

	archived, err := svc.Archive(ctx, "h1", "u1")
	require.NoError(t, err)
	assert.False(t, archived.Active)

	again, err := svc.Archive(ctx, "h1", "u1")
	require.NoError(t, err)
	assert.Equal(t, archived.Version, again.Version, "archiving twice does not write")

	restored, err := svc.Restore(ctx, "h1", "u1")
	require.NoError(t, err)
	assert.True(t, restored.Active)

	_, err = svc.Archive(ctx, "h1", "u2")
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}

func TestHabitService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMockHabitRepo(&domain.Habit{ID: "h1", UserID: "u1", Active: true})
	svc := services.NewHabitService(repo)

	assert.ErrorIs(t, svc.Delete(ctx, "h1", "u2"), domain.ErrHabitNotFound)
	require.NoError(t, svc.Delete(ctx, "h1", "u1"))

	_, err := repo.GetByID(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}
