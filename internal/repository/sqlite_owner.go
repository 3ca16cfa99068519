package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kamilla170/bloom/internal/db"
	"github.com/Kamilla170/bloom/internal/domain"
)

const ownerColumns = `id, reminder_enabled, monthly_nudge_enabled, last_monthly_nudge_at, created_at`

// SQLiteOwnerRepo implements OwnerRepo using a SQLite database.
type SQLiteOwnerRepo struct {
	db db.DBTX
}

// NewSQLiteOwnerRepo creates a new SQLiteOwnerRepo.
func NewSQLiteOwnerRepo(dbx db.DBTX) *SQLiteOwnerRepo {
	return &SQLiteOwnerRepo{db: dbx}
}

func (r *SQLiteOwnerRepo) Ensure(ctx context.Context, id int64) error {
	query := `INSERT INTO owners (id, created_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, id, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("ensuring owner: %w", err)
	}
	return nil
}

func (r *SQLiteOwnerRepo) GetByID(ctx context.Context, id int64) (*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var o domain.Owner
	var reminderInt, nudgeInt int
	var nudgedAtStr sql.NullString
	var createdAtStr string
	err := row.Scan(&o.ID, &reminderInt, &nudgeInt, &nudgedAtStr, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("owner %d not found", id)
		}
		return nil, fmt.Errorf("scanning owner: %w", err)
	}
	o.ReminderEnabled = intToBool(reminderInt)
	o.MonthlyNudgeEnabled = intToBool(nudgeInt)
	o.LastMonthlyNudgeAt = parseNullableTime(nudgedAtStr)
	o.CreatedAt = parseTime(createdAtStr)
	return &o, nil
}

func (r *SQLiteOwnerRepo) SetReminderEnabled(ctx context.Context, id int64, enabled bool) error {
	query := `UPDATE owners SET reminder_enabled = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, boolToInt(enabled), id); err != nil {
		return fmt.Errorf("updating owner reminder flag: %w", err)
	}
	return nil
}

func (r *SQLiteOwnerRepo) SetMonthlyNudgeEnabled(ctx context.Context, id int64, enabled bool) error {
	query := `UPDATE owners SET monthly_nudge_enabled = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, boolToInt(enabled), id); err != nil {
		return fmt.Errorf("updating owner nudge flag: %w", err)
	}
	return nil
}

func (r *SQLiteOwnerRepo) MarkNudged(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE owners SET last_monthly_nudge_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, formatTime(at), id); err != nil {
		return fmt.Errorf("marking owner nudged: %w", err)
	}
	return nil
}
