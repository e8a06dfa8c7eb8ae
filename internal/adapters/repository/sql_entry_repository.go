package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

var _ domain.HabitEntryRepository = (*SQLEntryRepository)(nil)

// entry_date is a DATE on Postgres and TEXT on SQLite; reading it back as
// text gives YYYY-MM-DD on both.
const entryColumns = `id, habit_id, user_id, CAST(entry_date AS TEXT) AS entry_date, completed, notes,
    value, mood, difficulty, version, created_at, updated_at`

const (
	minEntryDay = "0001-01-01"
	maxEntryDay = "9999-12-31"
)

type entryRow struct {
	domain.HabitEntry
	EntryDate string `db:"entry_date"`
}

func (row entryRow) toDomain() (*domain.HabitEntry, error) {
	day, err := analytics.ParseDay(row.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad entry_date %q: %w", row.ID, row.EntryDate, err)
	}
	e := row.HabitEntry
	e.Date = day
	return &e, nil
}

func toDomainList(rows []entryRow) ([]*domain.HabitEntry, error) {
	out := make([]*domain.HabitEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func dayBound(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return analytics.DayKey(t)
}

type SQLEntryRepository struct {
	db *sqlx.DB
}

func NewSQLEntryRepository(db *sqlx.DB) *SQLEntryRepository {
	return &SQLEntryRepository{db: db}
}

func (r *SQLEntryRepository) Upsert(ctx context.Context, entry *domain.HabitEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := r.db.Rebind(`
		INSERT INTO habit_entries (
			id, habit_id, user_id, entry_date, completed, notes,
			value, mood, difficulty, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (habit_id, entry_date) DO UPDATE SET
			completed  = excluded.completed,
			notes      = excluded.notes,
			value      = excluded.value,
			mood       = excluded.mood,
			difficulty = excluded.difficulty,
			version    = habit_entries.version + 1,
			updated_at = excluded.updated_at
		RETURNING id`)

	var id string
	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.HabitID, entry.UserID, entry.DayKey(), entry.Completed, entry.Notes,
		entry.Value, entry.Mood, entry.Difficulty, now, now,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("upsert entry failed: %w", err)
	}

	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*entry = *stored
	return nil
}

func (r *SQLEntryRepository) GetByID(ctx context.Context, id string) (*domain.HabitEntry, error) {
	var row entryRow
	query := r.db.Rebind(`SELECT ` + entryColumns + ` FROM habit_entries WHERE id = ?`)

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *SQLEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	rows := []entryRow{}
	query := r.db.Rebind(`
		SELECT ` + entryColumns + ` FROM habit_entries
		WHERE habit_id = ?
		  AND entry_date >= ?
		  AND entry_date <= ?
		ORDER BY entry_date DESC`)

	if err := r.db.SelectContext(ctx, &rows, query, habitID, dayBound(from, minEntryDay), dayBound(to, maxEntryDay)); err != nil {
		return nil, err
	}
	return toDomainList(rows)
}

func (r *SQLEntryRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	rows := []entryRow{}
	query := r.db.Rebind(`
		SELECT ` + entryColumns + ` FROM habit_entries
		WHERE user_id = ?
		  AND entry_date >= ?
		  AND entry_date <= ?
		ORDER BY entry_date ASC, habit_id ASC`)

	if err := r.db.SelectContext(ctx, &rows, query, userID, dayBound(from, minEntryDay), dayBound(to, maxEntryDay)); err != nil {
		return nil, err
	}
	return toDomainList(rows)
}

// Update writes the mutable fields if entry.Version still matches.
func (r *SQLEntryRepository) Update(ctx context.Context, entry *domain.HabitEntry) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE habit_entries
		SET completed = ?, notes = ?, value = ?, mood = ?, difficulty = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`)

	res, err := r.db.ExecContext(ctx, query,
		entry.Completed, entry.Notes, entry.Value, entry.Mood, entry.Difficulty,
		now, entry.ID, entry.Version,
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var count int
		if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT count(*) FROM habit_entries WHERE id = ?`), entry.ID); err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrEntryNotFound
		}
		return domain.ErrEntryConflict
	}

	entry.Version++
	entry.UpdatedAt = now
	return nil
}

func (r *SQLEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM habit_entries WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}
