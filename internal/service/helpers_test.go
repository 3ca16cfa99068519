package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/Kamilla170/bloom/internal/diagnosis"
	"github.com/Kamilla170/bloom/internal/repository"
	"github.com/Kamilla170/bloom/internal/testutil"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// env bundles everything a service test needs against one in-memory
// database. The clock is fixed; tests advance it by reassigning now.
type env struct {
	db        *sql.DB
	owners    *repository.SQLiteOwnerRepo
	plants    *repository.SQLitePlantRepo
	plans     *repository.SQLiteGrowingPlanRepo
	reminders *repository.SQLiteReminderRepo

	client *testutil.ScriptedModelClient
	msgr   *testutil.RecordingMessenger

	now time.Time

	plantSvc    PlantService
	reminderSvc ReminderService
	seasonalSvc SeasonalService
	growingSvc  GrowingService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	database := testutil.NewTestDB(t)
	e := &env{
		db:        database,
		owners:    repository.NewSQLiteOwnerRepo(database),
		plants:    repository.NewSQLitePlantRepo(database),
		plans:     repository.NewSQLiteGrowingPlanRepo(database),
		reminders: repository.NewSQLiteReminderRepo(database),
		client:    &testutil.ScriptedModelClient{},
		msgr:      &testutil.RecordingMessenger{},
		now:       testNow,
	}
	nowFn := func() time.Time { return e.now }

	pipeline := diagnosis.NewPipeline(e.client, diagnosis.Models{
		Vision:   "vision-model",
		Primary:  "primary-model",
		Fallback: "fallback-model",
	}, nowFn, nil)

	uow := testutil.NewTestUoW(database)
	e.reminderSvc = NewReminderService(uow, e.reminders, e.plants, e.owners, e.msgr, 0, time.UTC, nowFn, nil)
	e.plantSvc = NewPlantService(e.plants, e.owners, pipeline, e.reminderSvc,
		NewPendingStore(10*time.Minute), nowFn, nil)
	e.seasonalSvc = NewSeasonalService(e.plants, pipeline, e.reminderSvc, nowFn, nil)
	e.growingSvc = NewGrowingService(e.plans, e.owners, e.reminderSvc, pipeline, uow, nowFn, nil)
	return e
}

// scriptAnalysis queues a successful observe + diagnose pair.
func (e *env) scriptAnalysis(visionText, diagText string) {
	e.client.ScriptText(visionText)
	e.client.ScriptText(diagText)
}

const healthyVision = `SPECIES: Ficus elastica
CONFIDENCE: 85%
CURRENT_STATE: healthy
GROWTH_STAGE: mature
Leaves are firm and glossy, soil surface is slightly dry to the touch.`
