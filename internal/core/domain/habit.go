package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidTarget      = errors.New("streak target must be at least 1")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryProductivity Category = "productivity"
	CategoryLearning     Category = "learning"
	CategorySocial       Category = "social"
	CategorySpiritual    Category = "spiritual"
	CategoryCreative     Category = "creative"
	CategoryOther        Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryHealth,
	CategoryFitness,
	CategoryProductivity,
	CategoryLearning,
	CategorySocial,
	CategorySpiritual,
	CategoryCreative,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	DefaultColor        = "#3B82F6"
	DefaultStreakTarget = 7
	MaxNameLen          = 100
	MaxDescLen          = 500
)

type Habit struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description,omitempty" db:"description"`
	Category     Category  `json:"category" db:"category"`
	Color        string    `json:"color" db:"color"`
	StreakTarget int       `json:"streak_target" db:"streak_target"`
	Active       bool      `json:"active" db:"active"`
	Version      int       `json:"version" db:"version"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HabitAttributes carries the user-editable fields of a habit.
// Zero values select the defaults.
type HabitAttributes struct {
	Name         string
	Description  string
	Category     Category
	Color        string
	StreakTarget int
}

func normalize(attrs HabitAttributes) (HabitAttributes, error) {
	out := HabitAttributes{
		Name:         strings.TrimSpace(attrs.Name),
		Description:  strings.TrimSpace(attrs.Description),
		Category:     Category(strings.ToLower(strings.TrimSpace(string(attrs.Category)))),
		Color:        strings.TrimSpace(attrs.Color),
		StreakTarget: attrs.StreakTarget,
	}

	if out.Name == "" {
		return out, ErrHabitNameEmpty
	}
	if len(out.Name) > MaxNameLen {
		return out, ErrHabitNameTooLong
	}
	if len(out.Description) > MaxDescLen {
		return out, ErrHabitDescTooLong
	}

	if out.Category == "" {
		out.Category = CategoryOther
	} else if !out.Category.Valid() {
		return out, ErrInvalidCategory
	}

	if out.Color == "" {
		out.Color = DefaultColor
	} else if !colorRegex.MatchString(out.Color) {
		return out, ErrInvalidColor
	}

	if out.StreakTarget == 0 {
		out.StreakTarget = DefaultStreakTarget
	} else if out.StreakTarget < 1 {
		return out, ErrInvalidTarget
	}

	return out, nil
}

func NewHabit(userID string, attrs HabitAttributes) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	clean, err := normalize(attrs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         clean.Name,
		Description:  clean.Description,
		Category:     clean.Category,
		Color:        clean.Color,
		StreakTarget: clean.StreakTarget,
		Active:       true,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (h *Habit) Update(attrs HabitAttributes) error {
	if !h.Active {
		return ErrHabitArchived
	}

	clean, err := normalize(attrs)
	if err != nil {
		return err
	}

	h.Name = clean.Name
	h.Description = clean.Description
	h.Category = clean.Category
	h.Color = clean.Color
	h.StreakTarget = clean.StreakTarget
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) Archive() {
	if !h.Active {
		return
	}
	h.Active = false
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) Restore() {
	if h.Active {
		return
	}
	h.Active = true
	h.UpdatedAt = time.Now().UTC()
}
