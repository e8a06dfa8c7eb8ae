package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEntryNotFound = errors.New("habit entry not found")
	ErrEntryConflict = errors.New("habit entry version conflict")
)

type HabitEntryRepository interface {
	// Upsert stores the entry for its (habit, day) pair, replacing the
	// existing one if the day was already tracked. The stored row is
	// written back into entry (ID, Version, timestamps).
	Upsert(ctx context.Context, entry *HabitEntry) error

	// Update modifies an existing entry.
	// Implementations must handle Optimistic Locking (version check) to prevent data races.
	Update(ctx context.Context, entry *HabitEntry) error

	// Delete removes the entry. It requires userID to ensure the user owns it.
	Delete(ctx context.Context, id string, userID string) error

	// GetByID retrieves a single entry by its ID.
	GetByID(ctx context.Context, id string) (*HabitEntry, error)

	// ListByHabitID retrieves entries of a habit whose day falls in [from, to],
	// ordered by day descending.
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*HabitEntry, error)

	// ListByUserID retrieves entries of every habit of a user whose day falls in [from, to].
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*HabitEntry, error)
}
