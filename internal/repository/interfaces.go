package repository

import (
	"context"
	"time"

	"github.com/Kamilla170/bloom/internal/domain"
)

// DueWatering is a joined view of an overdue watering reminder with its
// plant, used by the daily sweep for message composition.
type DueWatering struct {
	Reminder domain.Reminder
	Plant    domain.Plant
}

// DueTask is a joined view of a due task reminder with its growing plan.
type DueTask struct {
	Reminder domain.Reminder
	Plan     domain.GrowingPlan
}

type OwnerRepo interface {
	// Ensure creates the owner row if it does not exist yet.
	Ensure(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Owner, error)
	SetReminderEnabled(ctx context.Context, id int64, enabled bool) error
	SetMonthlyNudgeEnabled(ctx context.Context, id int64, enabled bool) error
	MarkNudged(ctx context.Context, id int64, at time.Time) error
}

type PlantRepo interface {
	Create(ctx context.Context, p *domain.Plant) error
	GetByID(ctx context.Context, id string) (*domain.Plant, error)
	GetForOwner(ctx context.Context, id string, ownerID int64) (*domain.Plant, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Plant, error)
	// ListSpeciesIdentified returns reminder-enabled plants with a
	// non-empty species name, for seasonal recalibration.
	ListSpeciesIdentified(ctx context.Context) ([]*domain.Plant, error)
	// ListStalePhotos returns plants whose last photo analysis predates
	// cutoff (or never happened), for owners with the nudge enabled.
	// The per-owner 30-day suppression window is applied by the caller.
	ListStalePhotos(ctx context.Context, cutoff time.Time) ([]*domain.Plant, error)
	Update(ctx context.Context, p *domain.Plant) error
	Delete(ctx context.Context, id string, ownerID int64) error

	AddStateHistory(ctx context.Context, e *domain.StateHistoryEntry) error
	ListStateHistory(ctx context.Context, plantID string, limit int) ([]*domain.StateHistoryEntry, error)
}

type ReminderRepo interface {
	Create(ctx context.Context, r *domain.Reminder) error
	// DeactivateActive flips every active reminder for the (owner,
	// target, type) triple to inactive. Rows are never deleted here.
	DeactivateActive(ctx context.Context, ownerID int64, targetID string, typ domain.ReminderType) error
	GetActive(ctx context.Context, ownerID int64, targetID string, typ domain.ReminderType) (*domain.Reminder, error)
	ListByTarget(ctx context.Context, targetID string, typ domain.ReminderType) ([]*domain.Reminder, error)
	// ListDueWatering selects active watering reminders due within the
	// calendar day bounded by [dayStart, dayEnd) and not yet sent within
	// it. The caller derives the bounds in its configured timezone.
	// maxNags of 0 means no cap.
	ListDueWatering(ctx context.Context, dayStart, dayEnd time.Time, maxNags int) ([]DueWatering, error)
	ListDueTasks(ctx context.Context, dayStart, dayEnd time.Time) ([]DueTask, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
}

type GrowingPlanRepo interface {
	Create(ctx context.Context, g *domain.GrowingPlan) error
	GetByID(ctx context.Context, id string) (*domain.GrowingPlan, error)
	GetForOwner(ctx context.Context, id string, ownerID int64) (*domain.GrowingPlan, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.GrowingPlan, error)
	Update(ctx context.Context, g *domain.GrowingPlan) error
	Delete(ctx context.Context, id string, ownerID int64) error
}
