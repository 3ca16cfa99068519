package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesAllTables(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	for _, table := range []string{"owners", "plants", "plant_state_history", "growing_plans", "reminders"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(database))
	require.NoError(t, Migrate(database))
}

func TestMigrate_SingleActiveReminderIndex(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`INSERT INTO owners (id, created_at) VALUES (1, '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO plants (id, owner_id, state_changed_at, created_at, updated_at)
		VALUES ('p1', 1, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	insert := `INSERT INTO reminders (id, owner_id, plant_id, type, next_due_at, active, created_at)
		VALUES (?, 1, 'p1', 'watering', '2026-01-02T00:00:00Z', ?, '2026-01-01T00:00:00Z')`

	_, err = database.Exec(insert, "r1", 1)
	require.NoError(t, err)

	// Second active row for the same (owner, target, type) must be rejected.
	_, err = database.Exec(insert, "r2", 1)
	require.Error(t, err)

	// Inactive duplicates are fine.
	_, err = database.Exec(insert, "r3", 0)
	require.NoError(t, err)
}
