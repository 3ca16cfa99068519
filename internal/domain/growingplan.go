package domain

import "time"

// PlanTask is one dated task within a growing plan stage. DayOffset is
// relative to the plan's StartedAt.
type PlanTask struct {
	DayOffset   int    `json:"day_offset"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PlanStage groups tasks into a named phase of the plan.
type PlanStage struct {
	Name         string     `json:"name"`
	DurationDays int        `json:"duration_days"`
	Tasks        []PlanTask `json:"tasks"`
}

// GrowingPlan is a multi-stage "grow from seed" schedule. Stages are
// ordered; CurrentStage indexes into Stages.
type GrowingPlan struct {
	ID           string
	OwnerID      int64
	PlantName    string
	PlanText     string
	Stages       []PlanStage
	CurrentStage int
	Status       PlanStatus
	StartedAt    time.Time
	PhotoRef     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NextTaskAfter returns the task with the smallest day offset strictly
// greater than sentDay within the current stage, or nil when the stage
// has no further tasks. The chain never regresses or repeats a day.
func (g *GrowingPlan) NextTaskAfter(sentDay int) *PlanTask {
	if g.CurrentStage < 0 || g.CurrentStage >= len(g.Stages) {
		return nil
	}
	var next *PlanTask
	for i := range g.Stages[g.CurrentStage].Tasks {
		t := &g.Stages[g.CurrentStage].Tasks[i]
		if t.DayOffset <= sentDay {
			continue
		}
		if next == nil || t.DayOffset < next.DayOffset {
			next = t
		}
	}
	return next
}

// TaskOn returns the task scheduled exactly at dayOffset in the current
// stage, or nil.
func (g *GrowingPlan) TaskOn(dayOffset int) *PlanTask {
	if g.CurrentStage < 0 || g.CurrentStage >= len(g.Stages) {
		return nil
	}
	for i := range g.Stages[g.CurrentStage].Tasks {
		t := &g.Stages[g.CurrentStage].Tasks[i]
		if t.DayOffset == dayOffset {
			return t
		}
	}
	return nil
}

// DueDate converts a day offset into an absolute time on the plan
// calendar.
func (g *GrowingPlan) DueDate(dayOffset int) time.Time {
	return g.StartedAt.AddDate(0, 0, dayOffset)
}
