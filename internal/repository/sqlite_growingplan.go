package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Kamilla170/bloom/internal/db"
	"github.com/Kamilla170/bloom/internal/domain"
)

const growingPlanColumns = `id, owner_id, plant_name, plan_text, stages, current_stage,
		status, started_at, photo_ref, created_at, updated_at`

// SQLiteGrowingPlanRepo implements GrowingPlanRepo using a SQLite database.
// Stage structure is stored as a JSON document in the stages column.
type SQLiteGrowingPlanRepo struct {
	db db.DBTX
}

// NewSQLiteGrowingPlanRepo creates a new SQLiteGrowingPlanRepo.
func NewSQLiteGrowingPlanRepo(dbx db.DBTX) *SQLiteGrowingPlanRepo {
	return &SQLiteGrowingPlanRepo{db: dbx}
}

func (r *SQLiteGrowingPlanRepo) Create(ctx context.Context, g *domain.GrowingPlan) error {
	stagesJSON, err := marshalStages(g.Stages)
	if err != nil {
		return err
	}
	query := `INSERT INTO growing_plans (id, owner_id, plant_name, plan_text, stages, current_stage,
		status, started_at, photo_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		g.ID,
		g.OwnerID,
		g.PlantName,
		g.PlanText,
		stagesJSON,
		g.CurrentStage,
		string(g.Status),
		formatTime(g.StartedAt),
		g.PhotoRef,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting growing plan: %w", err)
	}
	return nil
}

func (r *SQLiteGrowingPlanRepo) GetByID(ctx context.Context, id string) (*domain.GrowingPlan, error) {
	query := `SELECT ` + growingPlanColumns + ` FROM growing_plans WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanGrowingPlan(row)
}

func (r *SQLiteGrowingPlanRepo) GetForOwner(ctx context.Context, id string, ownerID int64) (*domain.GrowingPlan, error) {
	query := `SELECT ` + growingPlanColumns + ` FROM growing_plans WHERE id = ? AND owner_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, ownerID)
	return scanGrowingPlan(row)
}

func (r *SQLiteGrowingPlanRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.GrowingPlan, error) {
	query := `SELECT ` + growingPlanColumns + ` FROM growing_plans WHERE owner_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing growing plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.GrowingPlan
	for rows.Next() {
		g, err := scanGrowingPlanRows(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, g)
	}
	return plans, rows.Err()
}

func (r *SQLiteGrowingPlanRepo) Update(ctx context.Context, g *domain.GrowingPlan) error {
	stagesJSON, err := marshalStages(g.Stages)
	if err != nil {
		return err
	}
	query := `UPDATE growing_plans SET plant_name = ?, plan_text = ?, stages = ?, current_stage = ?,
		status = ?, started_at = ?, photo_ref = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		g.PlantName,
		g.PlanText,
		stagesJSON,
		g.CurrentStage,
		string(g.Status),
		formatTime(g.StartedAt),
		g.PhotoRef,
		formatTime(g.UpdatedAt),
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("updating growing plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating growing plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("growing plan %s not found", g.ID)
	}
	return nil
}

func (r *SQLiteGrowingPlanRepo) Delete(ctx context.Context, id string, ownerID int64) error {
	query := `DELETE FROM growing_plans WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting growing plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting growing plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("growing plan %s not found", id)
	}
	return nil
}

func marshalStages(stages []domain.PlanStage) (string, error) {
	if stages == nil {
		stages = []domain.PlanStage{}
	}
	b, err := json.Marshal(stages)
	if err != nil {
		return "", fmt.Errorf("marshaling plan stages: %w", err)
	}
	return string(b), nil
}

func unmarshalStages(raw string, dst *[]domain.PlanStage) error {
	if raw == "" {
		*dst = nil
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("unmarshaling plan stages: %w", err)
	}
	return nil
}

func scanGrowingPlan(row *sql.Row) (*domain.GrowingPlan, error) {
	var g domain.GrowingPlan
	var stagesJSON, statusStr, startedStr, createdStr, updatedStr string

	err := row.Scan(
		&g.ID, &g.OwnerID, &g.PlantName, &g.PlanText, &stagesJSON, &g.CurrentStage,
		&statusStr, &startedStr, &g.PhotoRef, &createdStr, &updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("growing plan not found")
		}
		return nil, fmt.Errorf("scanning growing plan: %w", err)
	}
	if err := unmarshalStages(stagesJSON, &g.Stages); err != nil {
		return nil, err
	}
	g.Status = domain.PlanStatus(statusStr)
	g.StartedAt = parseTime(startedStr)
	g.CreatedAt = parseTime(createdStr)
	g.UpdatedAt = parseTime(updatedStr)
	return &g, nil
}

func scanGrowingPlanRows(rows *sql.Rows) (*domain.GrowingPlan, error) {
	var g domain.GrowingPlan
	var stagesJSON, statusStr, startedStr, createdStr, updatedStr string

	err := rows.Scan(
		&g.ID, &g.OwnerID, &g.PlantName, &g.PlanText, &stagesJSON, &g.CurrentStage,
		&statusStr, &startedStr, &g.PhotoRef, &createdStr, &updatedStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning growing plan row: %w", err)
	}
	if err := unmarshalStages(stagesJSON, &g.Stages); err != nil {
		return nil, err
	}
	g.Status = domain.PlanStatus(statusStr)
	g.StartedAt = parseTime(startedStr)
	g.CreatedAt = parseTime(createdStr)
	g.UpdatedAt = parseTime(updatedStr)
	return &g, nil
}
