package llm

// TaskType identifies the kind of model task being performed.
type TaskType string

const (
	TaskObserve     TaskType = "observe"
	TaskDiagnose    TaskType = "diagnose"
	TaskRecalibrate TaskType = "recalibrate"
	TaskPlanDraft   TaskType = "plan_draft"
)

// TaskConfig holds per-task model parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the model-inference subsystem.
type Config struct {
	Endpoint  string
	APIKey    string
	TimeoutMs int
	Tasks     map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with per-task parameters matching the
// production prompt budgets.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "https://api.openai.com/v1",
		TimeoutMs: 60000,
		Tasks: map[TaskType]TaskConfig{
			TaskObserve:     {Temperature: 0.2, MaxTokens: 1500, TimeoutMs: 60000},
			TaskDiagnose:    {Temperature: 0.3, MaxTokens: 1200, TimeoutMs: 60000},
			TaskRecalibrate: {Temperature: 0.3, MaxTokens: 10, TimeoutMs: 20000},
			TaskPlanDraft:   {Temperature: 0.2, MaxTokens: 1200, TimeoutMs: 60000},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}
