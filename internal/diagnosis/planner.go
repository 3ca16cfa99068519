package diagnosis

import (
	"context"
	"fmt"

	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/llm"
	"github.com/Kamilla170/bloom/internal/season"
)

const planSystemPrompt = `You are an agronomist-consultant with experience growing a wide range of plants.
Produce practical, scientifically grounded plans adjusted to the current season.`

func planUserPrompt(plantName string, sc season.Context) string {
	return fmt.Sprintf(`Write a professional growing plan for: %s

Current season: %s (%s).
%s

Requirements: concrete timings and parameters, critical success factors,
preventive measures against typical problems. Plain text, four stages:
preparation and planting, germination, active growth, mature plant.
For each stage give its duration in days and the key tasks.`,
		plantName, sc.Label, sc.GrowthPhase, sc.Recommendations)
}

// DraftPlan asks the reasoning model for a growing plan narrative and
// pairs it with the stage task calendar. The calendar day offsets drive
// the task-chain scheduler; the narrative is display-only.
func (p *Pipeline) DraftPlan(ctx context.Context, plantName string) (string, []domain.PlanStage, error) {
	sc := season.Current(p.now())
	resp, err := p.client.Complete(ctx, llm.CompleteRequest{
		Task:         llm.TaskPlanDraft,
		Model:        p.models.Primary,
		SystemPrompt: planSystemPrompt,
		UserPrompt:   planUserPrompt(plantName, sc),
	})
	if err != nil {
		return "", nil, fmt.Errorf("drafting growing plan: %w", err)
	}
	return resp.Text, DefaultTaskCalendar(), nil
}

// DefaultTaskCalendar is the four-stage task calendar used for every
// plan. Offsets are days since the plan started.
func DefaultTaskCalendar() []domain.PlanStage {
	return []domain.PlanStage{
		{
			Name:         "Preparation and planting",
			DurationDays: 7,
			Tasks: []domain.PlanTask{
				{DayOffset: 1, Title: "Planting", Description: "Plant the seeds or cutting"},
				{DayOffset: 3, Title: "First watering", Description: "Water moderately"},
				{DayOffset: 7, Title: "Check-up", Description: "Check substrate moisture"},
			},
		},
		{
			Name:         "Germination",
			DurationDays: 14,
			Tasks: []domain.PlanTask{
				{DayOffset: 10, Title: "First sprouts", Description: "Check for emerging sprouts"},
				{DayOffset: 14, Title: "Regular watering", Description: "Keep the substrate moist"},
			},
		},
		{
			Name:         "Active growth",
			DurationDays: 30,
			Tasks: []domain.PlanTask{
				{DayOffset: 21, Title: "First feeding", Description: "Apply fertilizer"},
				{DayOffset: 35, Title: "Growth check", Description: "Assess the plant's development"},
			},
		},
		{
			Name:         "Mature plant",
			DurationDays: 30,
			Tasks: []domain.PlanTask{
				{DayOffset: 50, Title: "Repotting", Description: "Move to a larger pot"},
				{DayOffset: 60, Title: "Shaping", Description: "Prune if needed"},
			},
		},
	}
}
