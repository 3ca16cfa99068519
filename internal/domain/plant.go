package domain

import (
	"strings"
	"time"
)

// Interval bounds for watering schedules, in days. Every interval that
// reaches the store passes through ClampInterval.
const (
	MinWateringInterval = 3
	MaxWateringInterval = 28

	// DefaultWateringInterval is the species-agnostic base used before a
	// model has asserted anything, and as the anchor for season fallbacks.
	DefaultWateringInterval = 5
)

// ClampInterval bounds a watering interval to [MinWateringInterval,
// MaxWateringInterval].
func ClampInterval(days int) int {
	if days < MinWateringInterval {
		return MinWateringInterval
	}
	if days > MaxWateringInterval {
		return MaxWateringInterval
	}
	return days
}

// Plant is a user-owned plant under care.
type Plant struct {
	ID          string
	OwnerID     int64
	SpeciesName string // empty until confidently identified
	CustomName  string
	State       PlantState
	StateChangedAt time.Time
	GrowthStage GrowthStage

	// WateringInterval is the effective value used for scheduling;
	// BaseWateringInterval is the last un-adjusted value the model
	// asserted for the species.
	WateringInterval     int
	BaseWateringInterval int

	LastWateredAt       *time.Time
	LastPhotoAnalysisAt *time.Time
	PhotoRef            string
	ReminderEnabled     bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DisplayName returns the custom name if set, otherwise the species name,
// otherwise a short id-based placeholder.
func (p *Plant) DisplayName() string {
	if p.CustomName != "" {
		return p.CustomName
	}
	if p.SpeciesName != "" {
		return p.SpeciesName
	}
	if len(p.ID) >= 8 {
		return "Plant " + p.ID[:8]
	}
	return "Plant " + p.ID
}

// HasSpecies reports whether the plant has a confidently identified
// species name. Plants without one are skipped on seasonal recalibration.
func (p *Plant) HasSpecies() bool {
	return strings.TrimSpace(p.SpeciesName) != ""
}

// StateHistoryEntry is one row of the append-only state transition audit
// trail. PreviousState is nil for the initial "added" transition.
type StateHistoryEntry struct {
	ID                 string
	PlantID            string
	OwnerID            int64
	PreviousState      *PlantState
	NewState           PlantState
	Reason             string
	WateringAdjustment int
	FeedingAdjustment  *int
	Recommendations    string
	PhotoRef           string
	CreatedAt          time.Time
}
