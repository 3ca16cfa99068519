package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlantRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	ctx := context.Background()

	watered := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	p := seedPlant(t, owners, plants, 100,
		testutil.WithSpecies("Ficus elastica"),
		testutil.WithCustomName("Fred"),
		testutil.WithState(domain.StateFlowering),
		testutil.WithInterval(9),
		testutil.WithLastWatered(watered))

	got, err := plants.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ficus elastica", got.SpeciesName)
	assert.Equal(t, "Fred", got.CustomName)
	assert.Equal(t, domain.StateFlowering, got.State)
	assert.Equal(t, 9, got.WateringInterval)
	assert.Equal(t, 9, got.BaseWateringInterval)
	require.NotNil(t, got.LastWateredAt)
	assert.True(t, got.LastWateredAt.Equal(watered))
	assert.Nil(t, got.LastPhotoAnalysisAt)
	assert.True(t, got.ReminderEnabled)
}

func TestPlantRepo_GetForOwnerScoping(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	ctx := context.Background()

	p := seedPlant(t, owners, plants, 100)
	require.NoError(t, owners.Ensure(ctx, 200))

	_, err := plants.GetForOwner(ctx, p.ID, 200)
	require.Error(t, err)

	got, err := plants.GetForOwner(ctx, p.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestPlantRepo_UpdateRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	ctx := context.Background()

	p := seedPlant(t, owners, plants, 100)
	p.State = domain.StateDormancy
	p.WateringInterval = 12
	p.SpeciesName = "Monstera deliciosa"
	now := time.Now().UTC()
	p.LastPhotoAnalysisAt = &now
	p.UpdatedAt = now
	require.NoError(t, plants.Update(ctx, p))

	got, err := plants.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateDormancy, got.State)
	assert.Equal(t, 12, got.WateringInterval)
	assert.Equal(t, "Monstera deliciosa", got.SpeciesName)
	require.NotNil(t, got.LastPhotoAnalysisAt)
}

func TestPlantRepo_UpdateMissing(t *testing.T) {
	database := testutil.NewTestDB(t)
	plants := NewSQLitePlantRepo(database)

	ghost := testutil.NewTestPlant(100)
	err := plants.Update(context.Background(), ghost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPlantRepo_DeleteCascadesReminders(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	reminders := NewSQLiteReminderRepo(database)
	ctx := context.Background()

	p := seedPlant(t, owners, plants, 100)
	require.NoError(t, reminders.Create(ctx, testutil.NewTestWateringReminder(100, p.ID)))

	require.NoError(t, plants.Delete(ctx, p.ID, 100))

	left, err := reminders.ListByTarget(ctx, p.ID, domain.ReminderWatering)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPlantRepo_ListSpeciesIdentified(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	ctx := context.Background()

	seedPlant(t, owners, plants, 100, testutil.WithSpecies("Ficus elastica"))
	seedPlant(t, owners, plants, 100) // no species
	seedPlant(t, owners, plants, 100, testutil.WithSpecies("Monstera"), testutil.WithRemindersDisabled())

	got, err := plants.ListSpeciesIdentified(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ficus elastica", got[0].SpeciesName)
}

func TestPlantRepo_ListStalePhotos(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -30)

	seedPlant(t, owners, plants, 100, testutil.WithCustomName("NeverAnalyzed"))
	seedPlant(t, owners, plants, 100, testutil.WithCustomName("Stale"),
		testutil.WithLastPhotoAnalysis(now.AddDate(0, 0, -45)))
	seedPlant(t, owners, plants, 100, testutil.WithCustomName("Fresh"),
		testutil.WithLastPhotoAnalysis(now.AddDate(0, 0, -5)))

	got, err := plants.ListStalePhotos(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// An owner who disabled the nudge drops out entirely; the 30-day
	// suppression window is the sweep's job, not this query's.
	require.NoError(t, owners.SetMonthlyNudgeEnabled(ctx, 100, false))
	got, err = plants.ListStalePhotos(ctx, cutoff)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPlantRepo_StateHistory(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	ctx := context.Background()

	p := seedPlant(t, owners, plants, 100)

	first := &domain.StateHistoryEntry{
		ID:        uuid.New().String(),
		PlantID:   p.ID,
		OwnerID:   100,
		NewState:  domain.StateHealthy,
		Reason:    "added",
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, plants.AddStateHistory(ctx, first))

	prev := domain.StateHealthy
	feeding := 7
	second := &domain.StateHistoryEntry{
		ID:                 uuid.New().String(),
		PlantID:            p.ID,
		OwnerID:            100,
		PreviousState:      &prev,
		NewState:           domain.StateActiveGrowth,
		Reason:             "new leaves unfurling",
		WateringAdjustment: 0,
		FeedingAdjustment:  &feeding,
		CreatedAt:          time.Now().UTC(),
	}
	require.NoError(t, plants.AddStateHistory(ctx, second))

	got, err := plants.ListStateHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, domain.StateActiveGrowth, got[0].NewState)
	require.NotNil(t, got[0].PreviousState)
	assert.Equal(t, domain.StateHealthy, *got[0].PreviousState)
	require.NotNil(t, got[0].FeedingAdjustment)
	assert.Equal(t, 7, *got[0].FeedingAdjustment)

	assert.Nil(t, got[1].PreviousState)
	assert.Equal(t, "added", got[1].Reason)
}

func TestPlantRepo_StateHistoryOrderStableWithinSameSecond(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plants := NewSQLitePlantRepo(database)
	ctx := context.Background()

	p := seedPlant(t, owners, plants, 100)

	// Timestamps are stored at second precision, so entries written in
	// the same second must still come back newest-insertion first.
	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	for _, reason := range []string{"first", "second", "third"} {
		require.NoError(t, plants.AddStateHistory(ctx, &domain.StateHistoryEntry{
			ID:        uuid.New().String(),
			PlantID:   p.ID,
			OwnerID:   100,
			NewState:  domain.StateHealthy,
			Reason:    reason,
			CreatedAt: at,
		}))
	}

	got, err := plants.ListStateHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Reason)
	assert.Equal(t, "second", got[1].Reason)
	assert.Equal(t, "first", got[2].Reason)
}

func TestGrowingPlanRepo_RoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	plansRepo := NewSQLiteGrowingPlanRepo(database)
	ctx := context.Background()

	require.NoError(t, owners.Ensure(ctx, 100))
	plan := testutil.NewTestGrowingPlan(100, "Basil")
	require.NoError(t, plansRepo.Create(ctx, plan))

	got, err := plansRepo.GetForOwner(ctx, plan.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, "Basil", got.PlantName)
	assert.Equal(t, domain.PlanActive, got.Status)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, "germination", got.Stages[0].Name)
	require.Len(t, got.Stages[0].Tasks, 3)
	assert.Equal(t, 1, got.Stages[0].Tasks[0].DayOffset)

	got.CurrentStage = 1
	got.Status = domain.PlanCompleted
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, plansRepo.Update(ctx, got))

	again, err := plansRepo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.CurrentStage)
	assert.Equal(t, domain.PlanCompleted, again.Status)
}

func TestOwnerRepo_EnsureIdempotent(t *testing.T) {
	database := testutil.NewTestDB(t)
	owners := NewSQLiteOwnerRepo(database)
	ctx := context.Background()

	require.NoError(t, owners.Ensure(ctx, 100))
	require.NoError(t, owners.SetReminderEnabled(ctx, 100, false))
	// A second Ensure must not reset settings.
	require.NoError(t, owners.Ensure(ctx, 100))

	got, err := owners.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.False(t, got.ReminderEnabled)
	assert.True(t, got.MonthlyNudgeEnabled)
	assert.Nil(t, got.LastMonthlyNudgeAt)
}
