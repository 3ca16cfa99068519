package domain

import "time"

// Owner holds per-user settings the engine reads and writes. The monthly
// photo nudge marker lives here, not on plants, so an owner with many
// stale plants is still notified at most once per 30 days.
type Owner struct {
	ID                  int64
	ReminderEnabled     bool
	MonthlyNudgeEnabled bool
	LastMonthlyNudgeAt  *time.Time
	CreatedAt           time.Time
}

// NudgeDue reports whether the owner may receive a monthly photo nudge
// at the given time.
func (o *Owner) NudgeDue(now time.Time) bool {
	if !o.MonthlyNudgeEnabled {
		return false
	}
	if o.LastMonthlyNudgeAt == nil {
		return true
	}
	return now.Sub(*o.LastMonthlyNudgeAt) > 30*24*time.Hour
}
