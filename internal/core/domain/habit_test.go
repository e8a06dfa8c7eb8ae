package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Applies defaults", func(t *testing.T) {
		h, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "  Drink Water "})

		require.NoError(t, err)
		assert.NotEmpty(t, h.ID)
		assert.Equal(t, "Drink Water", h.Name)
		assert.Equal(t, "u1", h.UserID)
		assert.Equal(t, domain.CategoryOther, h.Category)
		assert.Equal(t, domain.DefaultColor, h.Color)
		assert.Equal(t, domain.DefaultStreakTarget, h.StreakTarget)
		assert.True(t, h.Active)
		assert.Equal(t, 1, h.Version, "New habits start at Version 1 for optimistic locking")
		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	t.Run("Success: Category is case-insensitive", func(t *testing.T) {
		h, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "Run", Category: " Fitness "})

		require.NoError(t, err)
		assert.Equal(t, domain.CategoryFitness, h.Category)
	})

	t.Run("Error: Invalid UserID", func(t *testing.T) {
		_, err := domain.NewHabit(" ", domain.HabitAttributes{Name: "Run"})
		assert.ErrorIs(t, err, domain.ErrHabitInvalidUserID)
	})
}

func TestHabit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		attrs   domain.HabitAttributes
		wantErr error
	}{
		{"Fail: Empty name", domain.HabitAttributes{Name: "   "}, domain.ErrHabitNameEmpty},
		{"Fail: Name too long", domain.HabitAttributes{Name: strings.Repeat("a", domain.MaxNameLen+1)}, domain.ErrHabitNameTooLong},
		{"Fail: Description too long", domain.HabitAttributes{Name: "a", Description: strings.Repeat("d", domain.MaxDescLen+1)}, domain.ErrHabitDescTooLong},
		{"Fail: Unknown category", domain.HabitAttributes{Name: "a", Category: "hobby"}, domain.ErrInvalidCategory},
		{"Fail: Bad color", domain.HabitAttributes{Name: "a", Color: "blue"}, domain.ErrInvalidColor},
		{"Fail: Negative target", domain.HabitAttributes{Name: "a", StreakTarget: -3}, domain.ErrInvalidTarget},
		{"Success: Short hex color", domain.HabitAttributes{Name: "a", Color: "#FFF"}, nil},
		{"Success: Every field set", domain.HabitAttributes{Name: "a", Description: "d", Category: domain.CategorySpiritual, Color: "#10b981", StreakTarget: 30}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewHabit("u1", tt.attrs)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHabit_Update(t *testing.T) {
	t.Run("Success: Replaces attributes", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})
		before := h.UpdatedAt
		time.Sleep(time.Millisecond)

		err := h.Update(domain.HabitAttributes{Name: "Read more", Category: domain.CategoryLearning, StreakTarget: 21})

		require.NoError(t, err)
		assert.Equal(t, "Read more", h.Name)
		assert.Equal(t, domain.CategoryLearning, h.Category)
		assert.Equal(t, 21, h.StreakTarget)
		assert.True(t, h.UpdatedAt.After(before))
	})

	t.Run("Fail: Invalid attributes leave the habit untouched", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})

		err := h.Update(domain.HabitAttributes{Name: ""})

		assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)
		assert.Equal(t, "Read", h.Name)
	})

	t.Run("Fail: Archived habits are read-only", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})
		h.Archive()

		assert.ErrorIs(t, h.Update(domain.HabitAttributes{Name: "x"}), domain.ErrHabitArchived)
	})
}

func TestHabit_ArchiveRestore(t *testing.T) {
	h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Meditate"})

	h.Archive()
	assert.False(t, h.Active)
	archivedAt := h.UpdatedAt

	h.Archive()
	assert.Equal(t, archivedAt, h.UpdatedAt, "archiving twice is a no-op")

	h.Restore()
	assert.True(t, h.Active)
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range domain.Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, domain.Category("HEALTH").Valid())
	assert.False(t, domain.Category("").Valid())
}
