package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

func TestCreateHabit(t *testing.T) {
	t.Run("Success: 201 Created with defaults", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/v1/habits", "user-1", `{"name": "Gym", "category": "fitness"}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		habit := decode[domain.Habit](t, w)
		assert.NotEmpty(t, habit.ID)
		assert.Equal(t, "Gym", habit.Name)
		assert.Equal(t, domain.CategoryFitness, habit.Category)
		assert.Equal(t, domain.DefaultStreakTarget, habit.StreakTarget)
		assert.Equal(t, "user-1", habit.UserID)
		assert.True(t, habit.Active)
	})

	t.Run("Fail: 401 Unauthorized (no user)", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/v1/habits", "", `{"name": "Gym"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: 400 Bad Request", func(t *testing.T) {
		s := newTestServer(t)

		tests := []string{
			`{"name": ""}`,
			`{"name": "Gym", "color": "blue"}`,
			`{"name": "Gym", "category": "hobbies"}`,
			`{"name": "Gym", "streak_target": -3}`,
			`{not json`,
		}
		for _, body := range tests {
			w := s.do(t, http.MethodPost, "/api/v1/habits", "user-1", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})
}

func TestListAndGetHabits(t *testing.T) {
	s := newTestServer(t)
	mine := s.seedHabit(t, "user-1", "Read", domain.CategoryLearning)
	archived := s.seedHabit(t, "user-1", "Old", domain.CategoryOther)
	archived.Archive()
	require.NoError(t, s.habits.Update(t.Context(), archived))
	theirs := s.seedHabit(t, "user-2", "Run", domain.CategoryFitness)

	t.Run("List hides archived habits by default", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/habits", "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[[]domain.Habit](t, w)
		require.Len(t, list, 1)
		assert.Equal(t, mine.ID, list[0].ID)

		w = s.do(t, http.MethodGet, "/api/v1/habits?include_archived=true", "user-1", nil)
		assert.Len(t, decode[[]domain.Habit](t, w), 2)
	})

	t.Run("Empty list is an array", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/habits", "user-3", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Get own habit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/habits/"+mine.ID, "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Read", decode[domain.Habit](t, w).Name)
	})

	t.Run("Other users' habits are not found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/habits/"+theirs.ID, "user-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateHabit(t *testing.T) {
	t.Run("Success: partial update bumps the version", func(t *testing.T) {
		s := newTestServer(t)
		h := s.seedHabit(t, "user-1", "Read", domain.CategoryLearning)

		w := s.do(t, http.MethodPut, "/api/v1/habits/"+h.ID, "user-1", map[string]any{
			"streak_target": 30,
			"version":       1,
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[domain.Habit](t, w)
		assert.Equal(t, "Read", updated.Name)
		assert.Equal(t, 30, updated.StreakTarget)
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("Fail: 409 Conflict on stale version", func(t *testing.T) {
		s := newTestServer(t)
		h := s.seedHabit(t, "user-1", "Read", domain.CategoryLearning)

		first := s.do(t, http.MethodPut, "/api/v1/habits/"+h.ID, "user-1", map[string]any{"name": "Read more", "version": 1})
		require.Equal(t, http.StatusOK, first.Code)

		stale := s.do(t, http.MethodPut, "/api/v1/habits/"+h.ID, "user-1", map[string]any{"name": "Read less", "version": 1})
		assert.Equal(t, http.StatusConflict, stale.Code)
		assert.Contains(t, stale.Body.String(), "version conflict")
	})

	t.Run("Fail: 404 for unknown habit", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodPut, "/api/v1/habits/missing", "user-1", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestArchiveRestoreHabit(t *testing.T) {
	s := newTestServer(t)
	h := s.seedHabit(t, "user-1", "Read", domain.CategoryLearning)

	w := s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/archive", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[domain.Habit](t, w).Active)

	w = s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/restore", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.Habit](t, w).Active)

	w = s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/archive", "user-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteHabit(t *testing.T) {
	s := newTestServer(t)
	h := s.seedHabit(t, "user-1", "Read", domain.CategoryLearning)
	s.seedEntry(t, h, 0, true)

	w := s.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	list, err := s.entries.ListByUserID(t.Context(), "user-1", fixedNow.AddDate(-1, 0, 0), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, list)

	w = s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
