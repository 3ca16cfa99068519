package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kamilla170/bloom/internal/db"
	"github.com/Kamilla170/bloom/internal/domain"
)

// plantColumns is the canonical SELECT column list for plants.
const plantColumns = `id, owner_id, species_name, custom_name, state, state_changed_at,
		growth_stage, watering_interval, base_watering_interval,
		last_watered_at, last_photo_analysis_at, photo_ref, reminder_enabled,
		created_at, updated_at`

// plantColumnsAliased is the same column list prefixed with "p." for join queries.
const plantColumnsAliased = `p.id, p.owner_id, p.species_name, p.custom_name, p.state, p.state_changed_at,
		p.growth_stage, p.watering_interval, p.base_watering_interval,
		p.last_watered_at, p.last_photo_analysis_at, p.photo_ref, p.reminder_enabled,
		p.created_at, p.updated_at`

// SQLitePlantRepo implements PlantRepo using a SQLite database.
type SQLitePlantRepo struct {
	db db.DBTX
}

// NewSQLitePlantRepo creates a new SQLitePlantRepo.
func NewSQLitePlantRepo(dbx db.DBTX) *SQLitePlantRepo {
	return &SQLitePlantRepo{db: dbx}
}

func (r *SQLitePlantRepo) Create(ctx context.Context, p *domain.Plant) error {
	query := `INSERT INTO plants (id, owner_id, species_name, custom_name, state, state_changed_at,
		growth_stage, watering_interval, base_watering_interval,
		last_watered_at, last_photo_analysis_at, photo_ref, reminder_enabled,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.SpeciesName,
		p.CustomName,
		string(p.State),
		formatTime(p.StateChangedAt),
		string(p.GrowthStage),
		p.WateringInterval,
		p.BaseWateringInterval,
		nullableTimeToString(p.LastWateredAt),
		nullableTimeToString(p.LastPhotoAnalysisAt),
		p.PhotoRef,
		boolToInt(p.ReminderEnabled),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting plant: %w", err)
	}
	return nil
}

func (r *SQLitePlantRepo) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	query := `SELECT ` + plantColumns + ` FROM plants WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanPlant(row)
}

func (r *SQLitePlantRepo) GetForOwner(ctx context.Context, id string, ownerID int64) (*domain.Plant, error) {
	query := `SELECT ` + plantColumns + ` FROM plants WHERE id = ? AND owner_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, ownerID)
	return r.scanPlant(row)
}

func (r *SQLitePlantRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Plant, error) {
	query := `SELECT ` + plantColumns + ` FROM plants WHERE owner_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing plants by owner: %w", err)
	}
	defer rows.Close()
	return r.scanPlants(rows)
}

func (r *SQLitePlantRepo) ListSpeciesIdentified(ctx context.Context) ([]*domain.Plant, error) {
	query := `SELECT ` + plantColumns + ` FROM plants
		WHERE TRIM(species_name) != '' AND reminder_enabled = 1
		ORDER BY owner_id, species_name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing species-identified plants: %w", err)
	}
	defer rows.Close()
	return r.scanPlants(rows)
}

func (r *SQLitePlantRepo) ListStalePhotos(ctx context.Context, cutoff time.Time) ([]*domain.Plant, error) {
	// Per-owner nudge suppression is the caller's concern; this only
	// prefilters owners who opted out entirely.
	query := `SELECT ` + plantColumnsAliased + `
		FROM plants p
		JOIN owners o ON p.owner_id = o.id
		WHERE o.monthly_nudge_enabled = 1
		  AND (p.last_photo_analysis_at IS NULL OR p.last_photo_analysis_at < ?)
		ORDER BY p.owner_id, p.created_at`
	rows, err := r.db.QueryContext(ctx, query, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("listing stale-photo plants: %w", err)
	}
	defer rows.Close()
	return r.scanPlants(rows)
}

func (r *SQLitePlantRepo) Update(ctx context.Context, p *domain.Plant) error {
	query := `UPDATE plants SET species_name = ?, custom_name = ?, state = ?, state_changed_at = ?,
		growth_stage = ?, watering_interval = ?, base_watering_interval = ?,
		last_watered_at = ?, last_photo_analysis_at = ?, photo_ref = ?, reminder_enabled = ?,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.SpeciesName,
		p.CustomName,
		string(p.State),
		formatTime(p.StateChangedAt),
		string(p.GrowthStage),
		p.WateringInterval,
		p.BaseWateringInterval,
		nullableTimeToString(p.LastWateredAt),
		nullableTimeToString(p.LastPhotoAnalysisAt),
		p.PhotoRef,
		boolToInt(p.ReminderEnabled),
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating plant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating plant: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("plant %s not found", p.ID)
	}
	return nil
}

func (r *SQLitePlantRepo) Delete(ctx context.Context, id string, ownerID int64) error {
	query := `DELETE FROM plants WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting plant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting plant: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("plant %s not found", id)
	}
	return nil
}

func (r *SQLitePlantRepo) AddStateHistory(ctx context.Context, e *domain.StateHistoryEntry) error {
	query := `INSERT INTO plant_state_history (id, plant_id, owner_id, previous_state, new_state,
		reason, watering_adjustment, feeding_adjustment, recommendations, photo_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var prev interface{}
	if e.PreviousState != nil {
		prev = string(*e.PreviousState)
	}
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.PlantID,
		e.OwnerID,
		prev,
		string(e.NewState),
		e.Reason,
		e.WateringAdjustment,
		nullableIntToValue(e.FeedingAdjustment),
		e.Recommendations,
		e.PhotoRef,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting state history: %w", err)
	}
	return nil
}

func (r *SQLitePlantRepo) ListStateHistory(ctx context.Context, plantID string, limit int) ([]*domain.StateHistoryEntry, error) {
	query := `SELECT id, plant_id, owner_id, previous_state, new_state,
		reason, watering_adjustment, feeding_adjustment, recommendations, photo_ref, created_at
		FROM plant_state_history WHERE plant_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, plantID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing state history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.StateHistoryEntry
	for rows.Next() {
		var e domain.StateHistoryEntry
		var prevStr sql.NullString
		var newStr, createdAtStr string
		var feeding sql.NullInt64
		err := rows.Scan(&e.ID, &e.PlantID, &e.OwnerID, &prevStr, &newStr,
			&e.Reason, &e.WateringAdjustment, &feeding, &e.Recommendations, &e.PhotoRef, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}
		if prevStr.Valid {
			s := domain.PlantState(prevStr.String)
			e.PreviousState = &s
		}
		if feeding.Valid {
			v := int(feeding.Int64)
			e.FeedingAdjustment = &v
		}
		e.NewState = domain.PlantState(newStr)
		e.CreatedAt = parseTime(createdAtStr)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// scanPlant scans a single plant from a *sql.Row.
func (r *SQLitePlantRepo) scanPlant(row *sql.Row) (*domain.Plant, error) {
	var p domain.Plant
	var stateStr, stageStr string
	var stateChangedStr, createdAtStr, updatedAtStr string
	var wateredStr, analyzedStr sql.NullString
	var reminderInt int

	err := row.Scan(
		&p.ID, &p.OwnerID, &p.SpeciesName, &p.CustomName, &stateStr, &stateChangedStr,
		&stageStr, &p.WateringInterval, &p.BaseWateringInterval,
		&wateredStr, &analyzedStr, &p.PhotoRef, &reminderInt,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("plant not found")
		}
		return nil, fmt.Errorf("scanning plant: %w", err)
	}
	p.State = domain.PlantState(stateStr)
	p.GrowthStage = domain.GrowthStage(stageStr)
	p.StateChangedAt = parseTime(stateChangedStr)
	p.LastWateredAt = parseNullableTime(wateredStr)
	p.LastPhotoAnalysisAt = parseNullableTime(analyzedStr)
	p.ReminderEnabled = intToBool(reminderInt)
	p.CreatedAt = parseTime(createdAtStr)
	p.UpdatedAt = parseTime(updatedAtStr)
	return &p, nil
}

// scanPlants scans all plants from *sql.Rows.
func (r *SQLitePlantRepo) scanPlants(rows *sql.Rows) ([]*domain.Plant, error) {
	var plants []*domain.Plant
	for rows.Next() {
		var p domain.Plant
		var stateStr, stageStr string
		var stateChangedStr, createdAtStr, updatedAtStr string
		var wateredStr, analyzedStr sql.NullString
		var reminderInt int

		err := rows.Scan(
			&p.ID, &p.OwnerID, &p.SpeciesName, &p.CustomName, &stateStr, &stateChangedStr,
			&stageStr, &p.WateringInterval, &p.BaseWateringInterval,
			&wateredStr, &analyzedStr, &p.PhotoRef, &reminderInt,
			&createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning plant row: %w", err)
		}
		p.State = domain.PlantState(stateStr)
		p.GrowthStage = domain.GrowthStage(stageStr)
		p.StateChangedAt = parseTime(stateChangedStr)
		p.LastWateredAt = parseNullableTime(wateredStr)
		p.LastPhotoAnalysisAt = parseNullableTime(analyzedStr)
		p.ReminderEnabled = intToBool(reminderInt)
		p.CreatedAt = parseTime(createdAtStr)
		p.UpdatedAt = parseTime(updatedAtStr)
		plants = append(plants, &p)
	}
	return plants, rows.Err()
}
