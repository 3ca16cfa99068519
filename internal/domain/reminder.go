package domain

import "time"

// Reminder is one scheduled notification. For a given (owner, target,
// type) there is at most one row with Active = true; superseded rows are
// deactivated, never deleted.
type Reminder struct {
	ID      string
	OwnerID int64

	// Exactly one of PlantID / PlanID is set, depending on Type.
	PlantID string
	PlanID  string

	Type       ReminderType
	NextDueAt  time.Time
	LastSentAt *time.Time
	SendCount  int
	Active     bool

	// Task reminders carry the position within the growing plan.
	StageIndex int
	TaskDay    int

	CreatedAt time.Time
}

// TargetID returns the reference the reminder points at.
func (r *Reminder) TargetID() string {
	if r.Type == ReminderTask {
		return r.PlanID
	}
	return r.PlantID
}
