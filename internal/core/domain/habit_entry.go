package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidEntry      = errors.New("invalid habit entry data")
	ErrInvalidMood       = errors.New("mood must be between 1 and 5")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 5")
)

const (
	MinRating = 1
	MaxRating = 5
)

// HabitEntry is the completion record of one habit on one calendar day.
// Date always holds the start of that local day.
type HabitEntry struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	Date       time.Time `json:"date" db:"-"`
	Completed  bool      `json:"completed" db:"completed"`
	Notes      string    `json:"notes,omitempty" db:"notes"`
	Value      *int      `json:"value,omitempty" db:"value"`
	Mood       *int      `json:"mood,omitempty" db:"mood"`
	Difficulty *int      `json:"difficulty,omitempty" db:"difficulty"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabitEntry(habitID, userID string, date time.Time, completed bool) *HabitEntry {
	now := time.Now().UTC()

	return &HabitEntry{
		HabitID:   habitID,
		UserID:    userID,
		Date:      DayOf(date),
		Completed: completed,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DayKey returns the YYYY-MM-DD form of the entry date.
func (e *HabitEntry) DayKey() string {
	return e.Date.Format(DateLayout)
}

func (e *HabitEntry) Validate() error {
	if strings.TrimSpace(e.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEntry)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if e.Value != nil && *e.Value < 0 {
		return fmt.Errorf("%w: value cannot be negative", ErrInvalidEntry)
	}
	if !validRating(e.Mood) {
		return ErrInvalidMood
	}
	if !validRating(e.Difficulty) {
		return ErrInvalidDifficulty
	}
	return nil
}

// WellFormed reports whether the entry can take part in analytics.
// It is the lenient subset of Validate that ignores ownership fields.
func (e *HabitEntry) WellFormed() bool {
	if e.Date.IsZero() {
		return false
	}
	if e.Value != nil && *e.Value < 0 {
		return false
	}
	return validRating(e.Mood) && validRating(e.Difficulty)
}

func validRating(r *int) bool {
	return r == nil || (*r >= MinRating && *r <= MaxRating)
}
