package service

import (
	"context"
	"time"

	"github.com/Kamilla170/bloom/internal/diagnosis"
	"github.com/Kamilla170/bloom/internal/domain"
)

// SweepStats summarizes one batch sweep run. Failed counts rows that
// errored and were skipped; a sweep only returns an error when the batch
// itself could not be selected.
type SweepStats struct {
	Selected int
	Sent     int
	Failed   int
}

// RecalibrateStats summarizes one seasonal recalibration run.
type RecalibrateStats struct {
	Examined int
	Skipped  int
	Updated  int
	Failed   int
}

type PlantService interface {
	// AnalyzePhoto runs the diagnosis pipeline and parks the result as
	// the owner's pending analysis. Nothing is persisted until SavePending.
	AnalyzePhoto(ctx context.Context, req AnalyzePhotoRequest) (*diagnosis.Result, error)
	// SavePending turns the owner's pending analysis into a stored plant
	// (or an update of the analyzed plant) with a state history entry and
	// a fresh watering reminder.
	SavePending(ctx context.Context, ownerID int64, customName string) (*domain.Plant, error)
	Pending(ownerID int64) (*PendingAnalysis, bool)
	DiscardPending(ownerID int64)

	MarkWatered(ctx context.Context, ownerID int64, plantID string) (*domain.Reminder, error)
	// WaterAll acknowledges watering for every plant of the owner,
	// skipping over per-plant failures.
	WaterAll(ctx context.Context, ownerID int64) (int, error)
	Rename(ctx context.Context, ownerID int64, plantID, name string) error
	Delete(ctx context.Context, ownerID int64, plantID string) error
	List(ctx context.Context, ownerID int64) ([]*domain.Plant, error)
	Get(ctx context.Context, ownerID int64, plantID string) (*domain.Plant, error)
	History(ctx context.Context, ownerID int64, plantID string, limit int) ([]*domain.StateHistoryEntry, error)
	SetReminderEnabled(ctx context.Context, ownerID int64, plantID string, enabled bool) error
}

// AnalyzePhotoRequest carries one photo analysis. PlantID is empty for a
// new, not-yet-saved plant and set for a re-analysis of a known one.
type AnalyzePhotoRequest struct {
	OwnerID  int64
	PlantID  string
	Image    []byte
	PhotoRef string
	Question string
}

type ReminderService interface {
	// CreateReplace atomically deactivates any active reminder for the
	// same (owner, target, type) and inserts the new one. It is the only
	// way a reminder schedule changes.
	CreateReplace(ctx context.Context, r *domain.Reminder) error
	// ScheduleWatering replaces the plant's watering reminder with one
	// due a full interval after from.
	ScheduleWatering(ctx context.Context, plant *domain.Plant, from time.Time) (*domain.Reminder, error)
	// Snooze pushes the plant's watering reminder to tomorrow.
	Snooze(ctx context.Context, ownerID int64, plantID string) (*domain.Reminder, error)

	SweepWatering(ctx context.Context, now time.Time) (SweepStats, error)
	SweepTasks(ctx context.Context, now time.Time) (SweepStats, error)
	SweepMonthlyNudge(ctx context.Context, now time.Time) (SweepStats, error)
}

type SeasonalService interface {
	// RecalibrateAll re-asks the model for the watering interval of every
	// species-identified plant, updating plant and reminder only when the
	// answer differs from the current interval.
	RecalibrateAll(ctx context.Context) (RecalibrateStats, error)
	RecalibratePlant(ctx context.Context, ownerID int64, plantID string) (*domain.Plant, error)
}

type GrowingService interface {
	// CreatePlan drafts a staged plan for the given crop and schedules
	// the first task reminder.
	CreatePlan(ctx context.Context, ownerID int64, plantName string) (*domain.GrowingPlan, error)
	ListPlans(ctx context.Context, ownerID int64) ([]*domain.GrowingPlan, error)
	GetPlan(ctx context.Context, ownerID int64, planID string) (*domain.GrowingPlan, error)
	// AdvanceStage moves the plan to its next stage and schedules that
	// stage's first task; the final stage advance completes the plan.
	AdvanceStage(ctx context.Context, ownerID int64, planID string) (*domain.GrowingPlan, error)
	CompletePlan(ctx context.Context, ownerID int64, planID string) error
	DeletePlan(ctx context.Context, ownerID int64, planID string) error
}
