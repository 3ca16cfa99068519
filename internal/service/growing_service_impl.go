package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Kamilla170/bloom/internal/db"
	"github.com/Kamilla170/bloom/internal/diagnosis"
	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/repository"
	"github.com/google/uuid"
)

type growingService struct {
	plans     repository.GrowingPlanRepo
	owners    repository.OwnerRepo
	reminders ReminderService
	pipeline  *diagnosis.Pipeline
	uow       db.UnitOfWork
	now       func() time.Time
	log       *slog.Logger
}

// NewGrowingService creates a GrowingService.
func NewGrowingService(
	plans repository.GrowingPlanRepo,
	owners repository.OwnerRepo,
	reminders ReminderService,
	pipeline *diagnosis.Pipeline,
	uow db.UnitOfWork,
	now func() time.Time,
	log *slog.Logger,
) GrowingService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &growingService{
		plans:     plans,
		owners:    owners,
		reminders: reminders,
		pipeline:  pipeline,
		uow:       uow,
		now:       now,
		log:       log,
	}
}

func (s *growingService) CreatePlan(ctx context.Context, ownerID int64, plantName string) (*domain.GrowingPlan, error) {
	plantName = strings.TrimSpace(plantName)
	if plantName == "" {
		return nil, fmt.Errorf("plant name must not be empty")
	}
	if err := s.owners.Ensure(ctx, ownerID); err != nil {
		return nil, err
	}

	planText, stages, err := s.pipeline.DraftPlan(ctx, plantName)
	if err != nil {
		// A drafting failure never blocks the plan: the static calendar
		// covers the same ground at fixed offsets.
		s.log.Warn("plan drafting failed, using default calendar",
			"plant", plantName, "error", err)
		planText = ""
		stages = diagnosis.DefaultTaskCalendar()
	}

	now := s.now().UTC()
	plan := &domain.GrowingPlan{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		PlantName: plantName,
		PlanText:  planText,
		Stages:    stages,
		Status:    domain.PlanActive,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	if err := s.scheduleFirstTask(ctx, plan); err != nil {
		return nil, err
	}

	s.log.Info("growing plan created",
		"owner", ownerID, "plan", plan.ID, "plant", plantName, "stages", len(plan.Stages))
	return plan, nil
}

// scheduleFirstTask puts a reminder on the earliest task of the current
// stage. A stage without tasks gets no reminder.
func (s *growingService) scheduleFirstTask(ctx context.Context, plan *domain.GrowingPlan) error {
	first := plan.NextTaskAfter(0)
	if first == nil {
		return nil
	}
	due := plan.DueDate(first.DayOffset)
	if now := s.now().UTC(); due.Before(now) {
		due = now
	}
	return s.reminders.CreateReplace(ctx, &domain.Reminder{
		ID:         uuid.New().String(),
		OwnerID:    plan.OwnerID,
		PlanID:     plan.ID,
		Type:       domain.ReminderTask,
		NextDueAt:  due,
		StageIndex: plan.CurrentStage,
		TaskDay:    first.DayOffset,
		CreatedAt:  s.now().UTC(),
	})
}

func (s *growingService) ListPlans(ctx context.Context, ownerID int64) ([]*domain.GrowingPlan, error) {
	return s.plans.ListByOwner(ctx, ownerID)
}

func (s *growingService) GetPlan(ctx context.Context, ownerID int64, planID string) (*domain.GrowingPlan, error) {
	return s.plans.GetForOwner(ctx, planID, ownerID)
}

func (s *growingService) AdvanceStage(ctx context.Context, ownerID int64, planID string) (*domain.GrowingPlan, error) {
	plan, err := s.plans.GetForOwner(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanActive {
		return nil, fmt.Errorf("plan %s is not active", planID)
	}

	now := s.now().UTC()
	if plan.CurrentStage+1 >= len(plan.Stages) {
		plan.Status = domain.PlanCompleted
		plan.UpdatedAt = now
		if err := s.plans.Update(ctx, plan); err != nil {
			return nil, err
		}
		if err := s.deactivateTaskReminder(ctx, plan); err != nil {
			return nil, err
		}
		s.log.Info("growing plan completed", "plan", plan.ID)
		return plan, nil
	}

	plan.CurrentStage++
	plan.UpdatedAt = now
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.scheduleFirstTask(ctx, plan); err != nil {
		return nil, err
	}
	s.log.Info("growing plan advanced",
		"plan", plan.ID, "stage", plan.CurrentStage)
	return plan, nil
}

func (s *growingService) CompletePlan(ctx context.Context, ownerID int64, planID string) error {
	plan, err := s.plans.GetForOwner(ctx, planID, ownerID)
	if err != nil {
		return err
	}
	plan.Status = domain.PlanCompleted
	plan.UpdatedAt = s.now().UTC()
	if err := s.plans.Update(ctx, plan); err != nil {
		return err
	}
	return s.deactivateTaskReminder(ctx, plan)
}

func (s *growingService) DeletePlan(ctx context.Context, ownerID int64, planID string) error {
	return s.plans.Delete(ctx, planID, ownerID)
}

func (s *growingService) deactivateTaskReminder(ctx context.Context, plan *domain.GrowingPlan) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteReminderRepo(tx)
		return repo.DeactivateActive(ctx, plan.OwnerID, plan.ID, domain.ReminderTask)
	})
}
