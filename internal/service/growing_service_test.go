package service

import (
	"context"
	"testing"
	"time"

	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlan_SchedulesFirstTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.client.ScriptText("Basil from seed: prepare trays, keep warm, thin after sprouting.")

	plan, err := e.growingSvc.CreatePlan(ctx, 100, "Basil")
	require.NoError(t, err)
	assert.Contains(t, plan.PlanText, "Basil from seed")
	require.Len(t, plan.Stages, 4)
	assert.Equal(t, domain.PlanActive, plan.Status)
	assert.Equal(t, 0, plan.CurrentStage)

	rem, err := e.reminders.GetActive(ctx, 100, plan.ID, domain.ReminderTask)
	require.NoError(t, err)
	assert.Equal(t, 1, rem.TaskDay)
	assert.Equal(t, 0, rem.StageIndex)
	assert.Equal(t, e.now.AddDate(0, 0, 1).Format(time.RFC3339), rem.NextDueAt.Format(time.RFC3339))
}

func TestCreatePlan_DraftFailureFallsBackToCalendar(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.client.ScriptError(llm.ErrUnavailable)

	plan, err := e.growingSvc.CreatePlan(ctx, 100, "Tomato")
	require.NoError(t, err)
	assert.Empty(t, plan.PlanText)
	require.Len(t, plan.Stages, 4)

	// The static calendar still starts the chain on day one.
	rem, err := e.reminders.GetActive(ctx, 100, plan.ID, domain.ReminderTask)
	require.NoError(t, err)
	assert.Equal(t, 1, rem.TaskDay)
}

func TestCreatePlan_RejectsEmptyName(t *testing.T) {
	e := newEnv(t)
	_, err := e.growingSvc.CreatePlan(context.Background(), 100, "  ")
	require.Error(t, err)
	assert.Empty(t, e.client.Calls)
}

func TestAdvanceStage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.client.ScriptText("plan narrative")
	plan, err := e.growingSvc.CreatePlan(ctx, 100, "Basil")
	require.NoError(t, err)

	advanced, err := e.growingSvc.AdvanceStage(ctx, 100, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced.CurrentStage)
	assert.Equal(t, domain.PlanActive, advanced.Status)

	// The new stage's first task replaces the old chain position.
	rem, err := e.reminders.GetActive(ctx, 100, plan.ID, domain.ReminderTask)
	require.NoError(t, err)
	assert.Equal(t, 10, rem.TaskDay)
	assert.Equal(t, 1, rem.StageIndex)

	// Walk to the last stage, then complete it.
	_, err = e.growingSvc.AdvanceStage(ctx, 100, plan.ID)
	require.NoError(t, err)
	last, err := e.growingSvc.AdvanceStage(ctx, 100, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, last.CurrentStage)

	done, err := e.growingSvc.AdvanceStage(ctx, 100, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, done.Status)
	_, err = e.reminders.GetActive(ctx, 100, plan.ID, domain.ReminderTask)
	require.Error(t, err)

	_, err = e.growingSvc.AdvanceStage(ctx, 100, plan.ID)
	require.Error(t, err)
}

func TestCompleteAndDeletePlan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.client.ScriptText("plan narrative")
	plan, err := e.growingSvc.CreatePlan(ctx, 100, "Basil")
	require.NoError(t, err)

	require.NoError(t, e.growingSvc.CompletePlan(ctx, 100, plan.ID))
	got, err := e.growingSvc.GetPlan(ctx, 100, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, got.Status)
	_, err = e.reminders.GetActive(ctx, 100, plan.ID, domain.ReminderTask)
	require.Error(t, err)

	require.NoError(t, e.growingSvc.DeletePlan(ctx, 100, plan.ID))
	_, err = e.growingSvc.GetPlan(ctx, 100, plan.ID)
	require.Error(t, err)
}
