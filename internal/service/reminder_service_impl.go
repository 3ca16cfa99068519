package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Kamilla170/bloom/internal/db"
	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/messenger"
	"github.com/Kamilla170/bloom/internal/repository"
	"github.com/google/uuid"
)

// nudgeWindow is how long a plant may go without a fresh photo analysis
// before its owner is nudged, and the minimum gap between nudges.
const nudgeWindow = 30 * 24 * time.Hour

type reminderService struct {
	uow       db.UnitOfWork
	reminders repository.ReminderRepo
	plants    repository.PlantRepo
	owners    repository.OwnerRepo
	msgr      messenger.Messenger
	maxNags   int
	loc       *time.Location
	now       func() time.Time
	log       *slog.Logger
}

// NewReminderService creates a ReminderService. maxNags of 0 means an
// unacknowledged reminder repeats daily forever. loc is the timezone the
// daily sweep day boundary is evaluated in; nil means UTC.
func NewReminderService(
	uow db.UnitOfWork,
	reminders repository.ReminderRepo,
	plants repository.PlantRepo,
	owners repository.OwnerRepo,
	msgr messenger.Messenger,
	maxNags int,
	loc *time.Location,
	now func() time.Time,
	log *slog.Logger,
) ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &reminderService{
		uow:       uow,
		reminders: reminders,
		plants:    plants,
		owners:    owners,
		msgr:      msgr,
		maxNags:   maxNags,
		loc:       loc,
		now:       now,
		log:       log,
	}
}

func (s *reminderService) CreateReplace(ctx context.Context, r *domain.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	r.Active = true
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteReminderRepo(tx)
		if err := repo.DeactivateActive(ctx, r.OwnerID, r.TargetID(), r.Type); err != nil {
			return err
		}
		return repo.Create(ctx, r)
	})
}

func (s *reminderService) ScheduleWatering(ctx context.Context, plant *domain.Plant, from time.Time) (*domain.Reminder, error) {
	due := from.AddDate(0, 0, plant.WateringInterval)
	if now := s.now().UTC(); due.Before(now) {
		due = now
	}
	r := &domain.Reminder{
		ID:        uuid.New().String(),
		OwnerID:   plant.OwnerID,
		PlantID:   plant.ID,
		Type:      domain.ReminderWatering,
		NextDueAt: due,
		CreatedAt: s.now().UTC(),
	}
	if err := s.CreateReplace(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("watering reminder scheduled",
		"plant", plant.ID, "owner", plant.OwnerID, "due", r.NextDueAt)
	return r, nil
}

func (s *reminderService) Snooze(ctx context.Context, ownerID int64, plantID string) (*domain.Reminder, error) {
	if _, err := s.plants.GetForOwner(ctx, plantID, ownerID); err != nil {
		return nil, err
	}
	r := &domain.Reminder{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		PlantID:   plantID,
		Type:      domain.ReminderWatering,
		NextDueAt: s.now().UTC().AddDate(0, 0, 1),
		CreatedAt: s.now().UTC(),
	}
	if err := s.CreateReplace(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// dayBounds returns the [start, end) instants of the calendar day that
// contains now in the configured timezone. The sweep's "due today" and
// "already sent today" checks both use these bounds, so the day a
// reminder fires on is the owner's day, not the UTC one.
func (s *reminderService) dayBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.In(s.loc).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *reminderService) SweepWatering(ctx context.Context, now time.Time) (SweepStats, error) {
	var stats SweepStats
	dayStart, dayEnd := s.dayBounds(now)
	due, err := s.reminders.ListDueWatering(ctx, dayStart, dayEnd, s.maxNags)
	if err != nil {
		return stats, err
	}
	stats.Selected = len(due)

	for _, d := range due {
		if err := s.msgr.SendText(ctx, d.Reminder.OwnerID, wateringMessage(&d.Plant, &d.Reminder, now)); err != nil {
			stats.Failed++
			s.log.Warn("watering reminder delivery failed",
				"reminder", d.Reminder.ID, "owner", d.Reminder.OwnerID, "error", err)
			continue
		}
		if err := s.reminders.MarkSent(ctx, d.Reminder.ID, now.UTC()); err != nil {
			stats.Failed++
			s.log.Warn("marking watering reminder sent failed",
				"reminder", d.Reminder.ID, "error", err)
			continue
		}
		stats.Sent++
	}

	s.log.Info("watering sweep finished",
		"selected", stats.Selected, "sent", stats.Sent, "failed", stats.Failed)
	return stats, nil
}

func (s *reminderService) SweepTasks(ctx context.Context, now time.Time) (SweepStats, error) {
	var stats SweepStats
	dayStart, dayEnd := s.dayBounds(now)
	due, err := s.reminders.ListDueTasks(ctx, dayStart, dayEnd)
	if err != nil {
		return stats, err
	}
	stats.Selected = len(due)

	for _, d := range due {
		if err := s.fireTask(ctx, &d, now); err != nil {
			stats.Failed++
			s.log.Warn("task reminder failed",
				"reminder", d.Reminder.ID, "plan", d.Plan.ID, "error", err)
			continue
		}
		stats.Sent++
	}

	s.log.Info("task sweep finished",
		"selected", stats.Selected, "sent", stats.Sent, "failed", stats.Failed)
	return stats, nil
}

// fireTask delivers one task reminder and advances the chain: the fired
// reminder is consumed, and the next task of the current stage (if any)
// gets a fresh reminder. An exhausted stage ends the chain; stages never
// advance on their own.
func (s *reminderService) fireTask(ctx context.Context, d *repository.DueTask, now time.Time) error {
	if err := s.msgr.SendText(ctx, d.Reminder.OwnerID, taskMessage(&d.Plan, &d.Reminder)); err != nil {
		return err
	}
	if err := s.reminders.MarkSent(ctx, d.Reminder.ID, now.UTC()); err != nil {
		return err
	}

	next := d.Plan.NextTaskAfter(d.Reminder.TaskDay)
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteReminderRepo(tx)
		if err := repo.DeactivateActive(ctx, d.Reminder.OwnerID, d.Plan.ID, domain.ReminderTask); err != nil {
			return err
		}
		if next == nil {
			s.log.Info("task chain exhausted for stage",
				"plan", d.Plan.ID, "stage", d.Plan.CurrentStage)
			return nil
		}
		return repo.Create(ctx, &domain.Reminder{
			ID:         uuid.New().String(),
			OwnerID:    d.Reminder.OwnerID,
			PlanID:     d.Plan.ID,
			Type:       domain.ReminderTask,
			NextDueAt:  d.Plan.DueDate(next.DayOffset),
			Active:     true,
			StageIndex: d.Plan.CurrentStage,
			TaskDay:    next.DayOffset,
			CreatedAt:  now.UTC(),
		})
	})
}

func (s *reminderService) SweepMonthlyNudge(ctx context.Context, now time.Time) (SweepStats, error) {
	var stats SweepStats
	stale, err := s.plants.ListStalePhotos(ctx, now.Add(-nudgeWindow))
	if err != nil {
		return stats, err
	}

	// One message per owner, however many plants went stale.
	byOwner := make(map[int64][]*domain.Plant)
	var order []int64
	for _, p := range stale {
		if _, seen := byOwner[p.OwnerID]; !seen {
			order = append(order, p.OwnerID)
		}
		byOwner[p.OwnerID] = append(byOwner[p.OwnerID], p)
	}

	for _, ownerID := range order {
		owner, err := s.owners.GetByID(ctx, ownerID)
		if err != nil {
			stats.Failed++
			s.log.Warn("loading owner for nudge failed", "owner", ownerID, "error", err)
			continue
		}
		if !owner.NudgeDue(now) {
			continue
		}
		stats.Selected++
		if err := s.msgr.SendText(ctx, ownerID, nudgeMessage(byOwner[ownerID])); err != nil {
			stats.Failed++
			s.log.Warn("monthly nudge delivery failed", "owner", ownerID, "error", err)
			continue
		}
		if err := s.owners.MarkNudged(ctx, ownerID, now.UTC()); err != nil {
			stats.Failed++
			s.log.Warn("marking owner nudged failed", "owner", ownerID, "error", err)
			continue
		}
		stats.Sent++
	}

	s.log.Info("monthly nudge sweep finished",
		"selected", stats.Selected, "sent", stats.Sent, "failed", stats.Failed)
	return stats, nil
}

func wateringMessage(plant *domain.Plant, r *domain.Reminder, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💧 Time to water %s!", plant.DisplayName())
	if overdue := int(now.Sub(r.NextDueAt).Hours() / 24); overdue >= 1 {
		fmt.Fprintf(&b, "\nOverdue by %d day(s).", overdue)
	}
	fmt.Fprintf(&b, "\nWatering interval: every %d days.", plant.WateringInterval)
	b.WriteString("\nReply when done, or snooze until tomorrow.")
	return b.String()
}

func taskMessage(plan *domain.GrowingPlan, r *domain.Reminder) string {
	task := plan.TaskOn(r.TaskDay)
	var b strings.Builder
	fmt.Fprintf(&b, "🌱 %s, day %d", plan.PlantName, r.TaskDay)
	if task != nil {
		fmt.Fprintf(&b, ": %s", task.Title)
		if task.Description != "" {
			fmt.Fprintf(&b, "\n%s", task.Description)
		}
	}
	return b.String()
}

func nudgeMessage(plants []*domain.Plant) string {
	var b strings.Builder
	b.WriteString("📸 It's been a month since the last check-up for:")
	for _, p := range plants {
		fmt.Fprintf(&b, "\n• %s", p.DisplayName())
	}
	b.WriteString("\nSend a fresh photo so I can re-check health and watering.")
	return b.String()
}
