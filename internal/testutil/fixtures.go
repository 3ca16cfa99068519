package testutil

import (
	"time"

	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/google/uuid"
)

// Plant options
type PlantOption func(*domain.Plant)

func WithSpecies(name string) PlantOption {
	return func(p *domain.Plant) {
		p.SpeciesName = name
	}
}

func WithCustomName(name string) PlantOption {
	return func(p *domain.Plant) {
		p.CustomName = name
	}
}

func WithState(s domain.PlantState) PlantOption {
	return func(p *domain.Plant) {
		p.State = s
	}
}

func WithInterval(days int) PlantOption {
	return func(p *domain.Plant) {
		p.WateringInterval = days
		p.BaseWateringInterval = days
	}
}

func WithLastWatered(t time.Time) PlantOption {
	return func(p *domain.Plant) {
		p.LastWateredAt = &t
	}
}

func WithLastPhotoAnalysis(t time.Time) PlantOption {
	return func(p *domain.Plant) {
		p.LastPhotoAnalysisAt = &t
	}
}

func WithRemindersDisabled() PlantOption {
	return func(p *domain.Plant) {
		p.ReminderEnabled = false
	}
}

func NewTestPlant(ownerID int64, opts ...PlantOption) *domain.Plant {
	now := time.Now().UTC()
	p := &domain.Plant{
		ID:                   uuid.New().String(),
		OwnerID:              ownerID,
		State:                domain.StateHealthy,
		StateChangedAt:       now,
		GrowthStage:          domain.StageYoung,
		WateringInterval:     domain.DefaultWateringInterval,
		BaseWateringInterval: domain.DefaultWateringInterval,
		ReminderEnabled:      true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reminder options
type ReminderOption func(*domain.Reminder)

func WithNextDue(t time.Time) ReminderOption {
	return func(r *domain.Reminder) {
		r.NextDueAt = t
	}
}

func WithLastSent(t time.Time) ReminderOption {
	return func(r *domain.Reminder) {
		r.LastSentAt = &t
		if r.SendCount == 0 {
			r.SendCount = 1
		}
	}
}

func WithSendCount(n int) ReminderOption {
	return func(r *domain.Reminder) {
		r.SendCount = n
	}
}

func WithInactive() ReminderOption {
	return func(r *domain.Reminder) {
		r.Active = false
	}
}

func WithTaskPosition(stageIndex, taskDay int) ReminderOption {
	return func(r *domain.Reminder) {
		r.StageIndex = stageIndex
		r.TaskDay = taskDay
	}
}

// NewTestWateringReminder builds an active watering reminder due now.
func NewTestWateringReminder(ownerID int64, plantID string, opts ...ReminderOption) *domain.Reminder {
	now := time.Now().UTC()
	r := &domain.Reminder{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		PlantID:   plantID,
		Type:      domain.ReminderWatering,
		NextDueAt: now,
		Active:    true,
		CreatedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewTestTaskReminder builds an active task reminder due now.
func NewTestTaskReminder(ownerID int64, planID string, opts ...ReminderOption) *domain.Reminder {
	now := time.Now().UTC()
	r := &domain.Reminder{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		PlanID:    planID,
		Type:      domain.ReminderTask,
		NextDueAt: now,
		Active:    true,
		CreatedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GrowingPlan options
type PlanOption func(*domain.GrowingPlan)

func WithStages(stages []domain.PlanStage) PlanOption {
	return func(g *domain.GrowingPlan) {
		g.Stages = stages
	}
}

func WithCurrentStage(i int) PlanOption {
	return func(g *domain.GrowingPlan) {
		g.CurrentStage = i
	}
}

func WithStartedAt(t time.Time) PlanOption {
	return func(g *domain.GrowingPlan) {
		g.StartedAt = t
	}
}

func WithPlanStatus(s domain.PlanStatus) PlanOption {
	return func(g *domain.GrowingPlan) {
		g.Status = s
	}
}

func NewTestGrowingPlan(ownerID int64, plantName string, opts ...PlanOption) *domain.GrowingPlan {
	now := time.Now().UTC()
	g := &domain.GrowingPlan{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		PlantName: plantName,
		Stages: []domain.PlanStage{
			{
				Name:         "germination",
				DurationDays: 10,
				Tasks: []domain.PlanTask{
					{DayOffset: 1, Title: "Soak seeds"},
					{DayOffset: 3, Title: "Check moisture"},
					{DayOffset: 7, Title: "First sprouts check"},
				},
			},
			{
				Name:         "seedling",
				DurationDays: 20,
				Tasks: []domain.PlanTask{
					{DayOffset: 10, Title: "Thin seedlings"},
					{DayOffset: 14, Title: "First feeding"},
				},
			},
		},
		Status:    domain.PlanActive,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
