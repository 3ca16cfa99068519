package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Every statement is idempotent, so the list
// re-runs in full on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS owners (
		id                    INTEGER PRIMARY KEY,
		reminder_enabled      INTEGER NOT NULL DEFAULT 1,
		monthly_nudge_enabled INTEGER NOT NULL DEFAULT 1,
		last_monthly_nudge_at TEXT,
		created_at            TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plants (
		id                     TEXT PRIMARY KEY,
		owner_id               INTEGER NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		species_name           TEXT NOT NULL DEFAULT '',
		custom_name            TEXT NOT NULL DEFAULT '',
		state                  TEXT NOT NULL DEFAULT 'healthy'
		                       CHECK(state IN ('healthy','flowering','active_growth','dormancy','stress','adaptation')),
		state_changed_at       TEXT NOT NULL,
		growth_stage           TEXT NOT NULL DEFAULT 'young'
		                       CHECK(growth_stage IN ('young','mature','old')),
		watering_interval      INTEGER NOT NULL DEFAULT 5,
		base_watering_interval INTEGER NOT NULL DEFAULT 5,
		last_watered_at        TEXT,
		last_photo_analysis_at TEXT,
		photo_ref              TEXT NOT NULL DEFAULT '',
		reminder_enabled       INTEGER NOT NULL DEFAULT 1,
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plants_owner ON plants(owner_id)`,

	`CREATE TABLE IF NOT EXISTS plant_state_history (
		id                  TEXT PRIMARY KEY,
		plant_id            TEXT NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
		owner_id            INTEGER NOT NULL,
		previous_state      TEXT,
		new_state           TEXT NOT NULL,
		reason              TEXT NOT NULL DEFAULT '',
		watering_adjustment INTEGER NOT NULL DEFAULT 0,
		feeding_adjustment  INTEGER,
		recommendations     TEXT NOT NULL DEFAULT '',
		photo_ref           TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_state_history_plant ON plant_state_history(plant_id)`,

	`CREATE TABLE IF NOT EXISTS growing_plans (
		id            TEXT PRIMARY KEY,
		owner_id      INTEGER NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		plant_name    TEXT NOT NULL,
		plan_text     TEXT NOT NULL DEFAULT '',
		stages        TEXT NOT NULL DEFAULT '[]',
		current_stage INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'active'
		              CHECK(status IN ('active','completed')),
		started_at    TEXT NOT NULL,
		photo_ref     TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_growing_plans_owner ON growing_plans(owner_id)`,

	`CREATE TABLE IF NOT EXISTS reminders (
		id           TEXT PRIMARY KEY,
		owner_id     INTEGER NOT NULL,
		plant_id     TEXT REFERENCES plants(id) ON DELETE CASCADE,
		plan_id      TEXT REFERENCES growing_plans(id) ON DELETE CASCADE,
		type         TEXT NOT NULL CHECK(type IN ('watering','task')),
		next_due_at  TEXT NOT NULL,
		last_sent_at TEXT,
		send_count   INTEGER NOT NULL DEFAULT 0,
		active       INTEGER NOT NULL DEFAULT 1,
		stage_index  INTEGER NOT NULL DEFAULT 0,
		task_day     INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(active, type, next_due_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_plant ON reminders(plant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_plan ON reminders(plan_id)`,

	// At most one active reminder per (owner, target, type). CreateReplace
	// deactivates inside the same transaction, so a violation here is a
	// defect, not a runtime condition.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reminders_one_active
		ON reminders(owner_id, type, COALESCE(plant_id, plan_id))
		WHERE active = 1`,
}
