package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kamilla170/bloom/internal/db"
	"github.com/Kamilla170/bloom/internal/domain"
)

// reminderColumns is the canonical SELECT column list for reminders.
const reminderColumns = `id, owner_id, plant_id, plan_id, type, next_due_at,
		last_sent_at, send_count, active, stage_index, task_day, created_at`

// reminderColumnsAliased is the same column list prefixed with "r." for join queries.
const reminderColumnsAliased = `r.id, r.owner_id, r.plant_id, r.plan_id, r.type, r.next_due_at,
		r.last_sent_at, r.send_count, r.active, r.stage_index, r.task_day, r.created_at`

// SQLiteReminderRepo implements ReminderRepo using a SQLite database.
type SQLiteReminderRepo struct {
	db db.DBTX
}

// NewSQLiteReminderRepo creates a new SQLiteReminderRepo.
func NewSQLiteReminderRepo(dbx db.DBTX) *SQLiteReminderRepo {
	return &SQLiteReminderRepo{db: dbx}
}

func (r *SQLiteReminderRepo) Create(ctx context.Context, rem *domain.Reminder) error {
	query := `INSERT INTO reminders (id, owner_id, plant_id, plan_id, type, next_due_at,
		last_sent_at, send_count, active, stage_index, task_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rem.ID,
		rem.OwnerID,
		nullableString(rem.PlantID),
		nullableString(rem.PlanID),
		string(rem.Type),
		formatTime(rem.NextDueAt),
		nullableTimeToString(rem.LastSentAt),
		rem.SendCount,
		boolToInt(rem.Active),
		rem.StageIndex,
		rem.TaskDay,
		formatTime(rem.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting reminder: %w", err)
	}
	return nil
}

func (r *SQLiteReminderRepo) DeactivateActive(ctx context.Context, ownerID int64, targetID string, typ domain.ReminderType) error {
	query := `UPDATE reminders SET active = 0
		WHERE owner_id = ? AND type = ? AND COALESCE(plant_id, plan_id) = ? AND active = 1`
	if _, err := r.db.ExecContext(ctx, query, ownerID, string(typ), targetID); err != nil {
		return fmt.Errorf("deactivating reminders: %w", err)
	}
	return nil
}

func (r *SQLiteReminderRepo) GetActive(ctx context.Context, ownerID int64, targetID string, typ domain.ReminderType) (*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE owner_id = ? AND type = ? AND COALESCE(plant_id, plan_id) = ? AND active = 1`
	row := r.db.QueryRowContext(ctx, query, ownerID, string(typ), targetID)
	rem, err := scanReminderRow(row)
	if err != nil {
		return nil, err
	}
	return rem, nil
}

func (r *SQLiteReminderRepo) ListByTarget(ctx context.Context, targetID string, typ domain.ReminderType) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE type = ? AND COALESCE(plant_id, plan_id) = ?
		ORDER BY next_due_at`
	rows, err := r.db.QueryContext(ctx, query, string(typ), targetID)
	if err != nil {
		return nil, fmt.Errorf("listing reminders by target: %w", err)
	}
	defer rows.Close()

	var out []*domain.Reminder
	for rows.Next() {
		rem, err := scanReminderRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *SQLiteReminderRepo) ListDueWatering(ctx context.Context, dayStart, dayEnd time.Time, maxNags int) ([]DueWatering, error) {
	// Timestamps are stored as UTC RFC3339 strings, so instant
	// comparisons against the day bounds work lexicographically. A
	// reminder sent earlier today stays out of the batch; an overdue
	// reminder never acknowledged re-enters it every following day.
	query := `SELECT ` + reminderColumnsAliased + `, ` + plantColumnsAliased + `
		FROM reminders r
		JOIN plants p ON r.plant_id = p.id
		JOIN owners o ON r.owner_id = o.id
		WHERE r.active = 1 AND r.type = 'watering'
		  AND p.reminder_enabled = 1 AND o.reminder_enabled = 1
		  AND r.next_due_at < ?
		  AND (r.last_sent_at IS NULL OR r.last_sent_at < ?)`
	args := []any{formatTime(dayEnd), formatTime(dayStart)}
	if maxNags > 0 {
		query += ` AND r.send_count < ?`
		args = append(args, maxNags)
	}
	query += ` ORDER BY r.owner_id, r.next_due_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing due watering reminders: %w", err)
	}
	defer rows.Close()

	var due []DueWatering
	for rows.Next() {
		d, err := scanJoinedWatering(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *d)
	}
	return due, rows.Err()
}

func (r *SQLiteReminderRepo) ListDueTasks(ctx context.Context, dayStart, dayEnd time.Time) ([]DueTask, error) {
	query := `SELECT ` + reminderColumnsAliased + `,
		g.id, g.owner_id, g.plant_name, g.plan_text, g.stages, g.current_stage,
		g.status, g.started_at, g.photo_ref, g.created_at, g.updated_at
		FROM reminders r
		JOIN growing_plans g ON r.plan_id = g.id
		JOIN owners o ON r.owner_id = o.id
		WHERE r.active = 1 AND r.type = 'task'
		  AND g.status = 'active' AND o.reminder_enabled = 1
		  AND r.next_due_at < ?
		  AND (r.last_sent_at IS NULL OR r.last_sent_at < ?)
		ORDER BY r.owner_id, r.next_due_at`
	rows, err := r.db.QueryContext(ctx, query, formatTime(dayEnd), formatTime(dayStart))
	if err != nil {
		return nil, fmt.Errorf("listing due task reminders: %w", err)
	}
	defer rows.Close()

	var due []DueTask
	for rows.Next() {
		var d DueTask
		var plantIDStr, planIDStr, lastSentStr sql.NullString
		var typeStr, nextDueStr, remCreatedStr string
		var activeInt int
		var stagesJSON, statusStr, startedStr, planCreatedStr, planUpdatedStr string

		err := rows.Scan(
			&d.Reminder.ID, &d.Reminder.OwnerID, &plantIDStr, &planIDStr, &typeStr, &nextDueStr,
			&lastSentStr, &d.Reminder.SendCount, &activeInt, &d.Reminder.StageIndex, &d.Reminder.TaskDay, &remCreatedStr,
			&d.Plan.ID, &d.Plan.OwnerID, &d.Plan.PlantName, &d.Plan.PlanText, &stagesJSON, &d.Plan.CurrentStage,
			&statusStr, &startedStr, &d.Plan.PhotoRef, &planCreatedStr, &planUpdatedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning due task row: %w", err)
		}
		d.Reminder.PlantID = plantIDStr.String
		d.Reminder.PlanID = planIDStr.String
		d.Reminder.Type = domain.ReminderType(typeStr)
		d.Reminder.NextDueAt = parseTime(nextDueStr)
		d.Reminder.LastSentAt = parseNullableTime(lastSentStr)
		d.Reminder.Active = intToBool(activeInt)
		d.Reminder.CreatedAt = parseTime(remCreatedStr)
		if err := unmarshalStages(stagesJSON, &d.Plan.Stages); err != nil {
			return nil, err
		}
		d.Plan.Status = domain.PlanStatus(statusStr)
		d.Plan.StartedAt = parseTime(startedStr)
		d.Plan.CreatedAt = parseTime(planCreatedStr)
		d.Plan.UpdatedAt = parseTime(planUpdatedStr)
		due = append(due, d)
	}
	return due, rows.Err()
}

func (r *SQLiteReminderRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	// next_due_at is deliberately untouched: an unacknowledged reminder
	// stays overdue and fires again tomorrow.
	query := `UPDATE reminders SET last_sent_at = ?, send_count = send_count + 1 WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("reminder %s not found", id)
	}
	return nil
}

func scanReminderRow(row *sql.Row) (*domain.Reminder, error) {
	var rem domain.Reminder
	var plantIDStr, planIDStr, lastSentStr sql.NullString
	var typeStr, nextDueStr, createdStr string
	var activeInt int

	err := row.Scan(
		&rem.ID, &rem.OwnerID, &plantIDStr, &planIDStr, &typeStr, &nextDueStr,
		&lastSentStr, &rem.SendCount, &activeInt, &rem.StageIndex, &rem.TaskDay, &createdStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reminder not found")
		}
		return nil, fmt.Errorf("scanning reminder: %w", err)
	}
	rem.PlantID = plantIDStr.String
	rem.PlanID = planIDStr.String
	rem.Type = domain.ReminderType(typeStr)
	rem.NextDueAt = parseTime(nextDueStr)
	rem.LastSentAt = parseNullableTime(lastSentStr)
	rem.Active = intToBool(activeInt)
	rem.CreatedAt = parseTime(createdStr)
	return &rem, nil
}

func scanReminderRows(rows *sql.Rows) (*domain.Reminder, error) {
	var rem domain.Reminder
	var plantIDStr, planIDStr, lastSentStr sql.NullString
	var typeStr, nextDueStr, createdStr string
	var activeInt int

	err := rows.Scan(
		&rem.ID, &rem.OwnerID, &plantIDStr, &planIDStr, &typeStr, &nextDueStr,
		&lastSentStr, &rem.SendCount, &activeInt, &rem.StageIndex, &rem.TaskDay, &createdStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning reminder row: %w", err)
	}
	rem.PlantID = plantIDStr.String
	rem.PlanID = planIDStr.String
	rem.Type = domain.ReminderType(typeStr)
	rem.NextDueAt = parseTime(nextDueStr)
	rem.LastSentAt = parseNullableTime(lastSentStr)
	rem.Active = intToBool(activeInt)
	rem.CreatedAt = parseTime(createdStr)
	return &rem, nil
}

func scanJoinedWatering(rows *sql.Rows) (*DueWatering, error) {
	var d DueWatering
	var plantIDStr, planIDStr, lastSentStr sql.NullString
	var typeStr, nextDueStr, remCreatedStr string
	var activeInt int

	var stateStr, stageStr string
	var stateChangedStr, plantCreatedStr, plantUpdatedStr string
	var wateredStr, analyzedStr sql.NullString
	var plantReminderInt int

	err := rows.Scan(
		&d.Reminder.ID, &d.Reminder.OwnerID, &plantIDStr, &planIDStr, &typeStr, &nextDueStr,
		&lastSentStr, &d.Reminder.SendCount, &activeInt, &d.Reminder.StageIndex, &d.Reminder.TaskDay, &remCreatedStr,
		&d.Plant.ID, &d.Plant.OwnerID, &d.Plant.SpeciesName, &d.Plant.CustomName, &stateStr, &stateChangedStr,
		&stageStr, &d.Plant.WateringInterval, &d.Plant.BaseWateringInterval,
		&wateredStr, &analyzedStr, &d.Plant.PhotoRef, &plantReminderInt,
		&plantCreatedStr, &plantUpdatedStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning due watering row: %w", err)
	}
	d.Reminder.PlantID = plantIDStr.String
	d.Reminder.PlanID = planIDStr.String
	d.Reminder.Type = domain.ReminderType(typeStr)
	d.Reminder.NextDueAt = parseTime(nextDueStr)
	d.Reminder.LastSentAt = parseNullableTime(lastSentStr)
	d.Reminder.Active = intToBool(activeInt)
	d.Reminder.CreatedAt = parseTime(remCreatedStr)

	d.Plant.State = domain.PlantState(stateStr)
	d.Plant.GrowthStage = domain.GrowthStage(stageStr)
	d.Plant.StateChangedAt = parseTime(stateChangedStr)
	d.Plant.LastWateredAt = parseNullableTime(wateredStr)
	d.Plant.LastPhotoAnalysisAt = parseNullableTime(analyzedStr)
	d.Plant.ReminderEnabled = intToBool(plantReminderInt)
	d.Plant.CreatedAt = parseTime(plantCreatedStr)
	d.Plant.UpdatedAt = parseTime(plantUpdatedStr)
	return &d, nil
}
