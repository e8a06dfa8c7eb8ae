package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

var _ domain.HabitRepository = (*SQLHabitRepository)(nil)

const habitColumns = `id, user_id, name, description, category, color, streak_target, active, version, created_at, updated_at`

// SQLHabitRepository works on Postgres and SQLite alike; queries are written
// with ? placeholders and rebound for the driver.
type SQLHabitRepository struct {
	db *sqlx.DB
}

func NewSQLHabitRepository(db *sqlx.DB) *SQLHabitRepository {
	return &SQLHabitRepository{db: db}
}

func (r *SQLHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := r.db.Rebind(`
        INSERT INTO habits (` + habitColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Description, string(h.Category), h.Color, h.StreakTarget, h.Active,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown user %s", domain.ErrHabitInvalidUserID, h.UserID)
		}
		if isUniqueViolation(err) {
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *SQLHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var h domain.Habit
	query := r.db.Rebind(`SELECT ` + habitColumns + ` FROM habits WHERE id = ?`)

	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &h, nil
}

func (r *SQLHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}
	query := r.db.Rebind(`
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = ?
        ORDER BY created_at ASC, id ASC`)

	if err := r.db.SelectContext(ctx, &habits, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (r *SQLHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`
        UPDATE habits SET
            name = ?, description = ?, category = ?, color = ?, streak_target = ?, active = ?,
            updated_at = ?, version = version + 1
        WHERE id = ? AND version = ?`)

	res, err := r.db.ExecContext(ctx, query,
		h.Name, h.Description, string(h.Category), h.Color, h.StreakTarget, h.Active,
		now, h.ID, h.Version,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var count int
		if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT count(*) FROM habits WHERE id = ?`), h.ID); err != nil {
			return fmt.Errorf("existence check failed: %w", err)
		}
		if count == 0 {
			return domain.ErrHabitNotFound
		}
		return domain.ErrHabitConflict
	}

	h.Version++
	h.UpdatedAt = now
	return nil
}

// Delete removes the habit and its entries in one transaction.
func (r *SQLHabitRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habit_entries WHERE habit_id = ?`), id); err != nil {
		return fmt.Errorf("delete entries failed: %w", err)
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habits WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return tx.Commit()
}
