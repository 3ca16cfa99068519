package diagnosis

import (
	"strconv"
	"strings"

	"github.com/Kamilla170/bloom/internal/domain"
)

// Extraction is the typed record produced from free-form diagnostic text.
type Extraction struct {
	State                  domain.PlantState
	StateReason            string
	GrowthStage            domain.GrowthStage
	WateringAdjustmentDays int
	FeedingAdjustmentDays  *int
	Recommendations        string

	// EffectiveWateringIntervalDays is always within [3, 28].
	EffectiveWateringIntervalDays int
}

// Marker lines the models are instructed to emit. Parsing is prefix-based
// and tolerant: missing markers fall back to defaults.
const (
	markerSpecies         = "SPECIES:"
	markerConfidence      = "CONFIDENCE:"
	markerState           = "CURRENT_STATE:"
	markerStateReason     = "STATE_REASON:"
	markerGrowthStage     = "GROWTH_STAGE:"
	markerRecommendations = "RECOMMENDATIONS:"
	markerInterval        = "WATERING_INTERVAL:"
)

// stateKeywords maps each state to the substrings that select it, in both
// English and Russian. Order matters: the first matching branch wins.
var statePriority = []struct {
	state    domain.PlantState
	keywords []string
}{
	{domain.StateFlowering, []string{"flowering", "bloom", "цветен"}},
	{domain.StateActiveGrowth, []string{"active_growth", "active growth", "активн"}},
	{domain.StateDormancy, []string{"dormancy", "dormant", "поко"}},
	{domain.StateStress, []string{"stress", "disease", "стресс", "болезн"}},
	{domain.StateAdaptation, []string{"adaptation", "adapting", "адаптац"}},
}

// ClassifyState maps a free-text state description onto the bounded state
// enum. The match is case-insensitive and priority-ordered; anything
// unmatched is healthy.
func ClassifyState(text string) domain.PlantState {
	lower := strings.ToLower(text)
	for _, branch := range statePriority {
		for _, kw := range branch.keywords {
			if strings.Contains(lower, kw) {
				return branch.state
			}
		}
	}
	return domain.StateHealthy
}

// ClassifyGrowthStage maps a free-text stage description onto the growth
// stage enum, defaulting to young.
func ClassifyGrowthStage(text string) domain.GrowthStage {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "old") || strings.Contains(lower, "стар"):
		return domain.StageOld
	case strings.Contains(lower, "mature") || strings.Contains(lower, "adult") || strings.Contains(lower, "взросл"):
		return domain.StageMature
	default:
		return domain.StageYoung
	}
}

// Extract parses diagnostic text into a typed Extraction. intervalDays is
// the explicit model-provided interval when parsed (nil otherwise); state
// and season defaults apply only in its absence.
func Extract(text string, intervalDays *int, seasonFallback int) Extraction {
	ex := Extraction{
		State:       domain.StateHealthy,
		GrowthStage: domain.StageYoung,
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, markerState):
			ex.State = ClassifyState(strings.TrimPrefix(line, markerState))
		case strings.HasPrefix(line, markerStateReason):
			ex.StateReason = strings.TrimSpace(strings.TrimPrefix(line, markerStateReason))
		case strings.HasPrefix(line, markerGrowthStage):
			ex.GrowthStage = ClassifyGrowthStage(strings.TrimPrefix(line, markerGrowthStage))
		case strings.HasPrefix(line, markerRecommendations):
			ex.Recommendations = strings.TrimSpace(strings.TrimPrefix(line, markerRecommendations))
		}
	}

	ex.WateringAdjustmentDays = ex.State.WateringAdjustment()
	ex.FeedingAdjustmentDays = ex.State.FeedingAdjustment()

	if intervalDays != nil {
		ex.EffectiveWateringIntervalDays = domain.ClampInterval(*intervalDays)
	} else {
		ex.EffectiveWateringIntervalDays = domain.ClampInterval(seasonFallback + ex.WateringAdjustmentDays)
	}
	return ex
}

// ParseInterval finds the WATERING_INTERVAL marker line, parses the first
// integer on it, and returns the text with that line stripped. The parsed
// value is not yet clamped; ok is false when no usable line exists.
func ParseInterval(text string) (days int, stripped string, ok bool) {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, markerInterval) {
			kept = append(kept, raw)
			continue
		}
		if n, found := firstInt(strings.TrimPrefix(line, markerInterval)); found && !ok {
			days = n
			ok = true
		}
		// Marker line is never shown to the user, parseable or not.
	}
	return days, strings.TrimSpace(strings.Join(kept, "\n")), ok
}

// ParseConfidence extracts the CONFIDENCE percentage from observation
// text. A present but unparseable marker defaults to 70; an absent marker
// yields 0.
func ParseConfidence(text string) int {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, markerConfidence) {
			continue
		}
		if n, ok := firstInt(strings.TrimPrefix(line, markerConfidence)); ok {
			return n
		}
		return 70
	}
	return 0
}

// ParseSpecies extracts the SPECIES line from observation text.
func ParseSpecies(text string) string {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, markerSpecies) {
			return strings.TrimSpace(strings.TrimPrefix(line, markerSpecies))
		}
	}
	return ""
}

// firstInt returns the first run of digits in s as an integer.
func firstInt(s string) (int, bool) {
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] >= '0' && s[i] <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}
