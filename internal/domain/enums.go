package domain

// PlantState is the bounded set of states a plant can be diagnosed into.
type PlantState string

const (
	StateHealthy      PlantState = "healthy"
	StateFlowering    PlantState = "flowering"
	StateActiveGrowth PlantState = "active_growth"
	StateDormancy     PlantState = "dormancy"
	StateStress       PlantState = "stress"
	StateAdaptation   PlantState = "adaptation"
)

type GrowthStage string

const (
	StageYoung  GrowthStage = "young"
	StageMature GrowthStage = "mature"
	StageOld    GrowthStage = "old"
)

type ReminderType string

const (
	ReminderWatering ReminderType = "watering"
	ReminderTask     ReminderType = "task"
)

type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

// WateringAdjustment returns the default interval delta (days) a state
// implies when no model-provided interval exists. Negative means water
// more often.
func (s PlantState) WateringAdjustment() int {
	switch s {
	case StateFlowering:
		return -2
	case StateDormancy:
		return 5
	default:
		return 0
	}
}

// FeedingAdjustment returns the default feeding cadence in days, or nil
// when the state implies no feeding schedule.
func (s PlantState) FeedingAdjustment() *int {
	if s == StateActiveGrowth {
		weekly := 7
		return &weekly
	}
	return nil
}
