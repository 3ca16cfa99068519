package diagnosis

import (
	"testing"

	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyState(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.PlantState
	}{
		{"flowering english", "the plant is flowering nicely", domain.StateFlowering},
		{"bloom keyword", "buds about to bloom", domain.StateFlowering},
		{"flowering russian", "растение в периоде цветения", domain.StateFlowering},
		{"active growth", "active growth with new leaves", domain.StateActiveGrowth},
		{"active growth russian", "активный рост", domain.StateActiveGrowth},
		{"dormancy", "the plant is dormant for winter", domain.StateDormancy},
		{"dormancy russian", "состояние покоя", domain.StateDormancy},
		{"stress", "visible stress from overwatering", domain.StateStress},
		{"disease maps to stress", "signs of fungal disease", domain.StateStress},
		{"adaptation", "still adapting after repotting", domain.StateAdaptation},
		{"no keyword", "looks fine overall", domain.StateHealthy},
		{"empty", "", domain.StateHealthy},
		{"case insensitive", "FLOWERING", domain.StateFlowering},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyState(tt.text))
		})
	}
}

func TestClassifyState_PriorityOrder(t *testing.T) {
	// Flowering outranks stress when both keywords appear.
	got := ClassifyState("flowering but showing stress on lower leaves")
	assert.Equal(t, domain.StateFlowering, got)

	// Active growth outranks dormancy.
	got = ClassifyState("active growth, no dormancy signs")
	assert.Equal(t, domain.StateActiveGrowth, got)
}

func TestClassifyGrowthStage(t *testing.T) {
	assert.Equal(t, domain.StageOld, ClassifyGrowthStage("an old specimen"))
	assert.Equal(t, domain.StageMature, ClassifyGrowthStage("mature plant"))
	assert.Equal(t, domain.StageMature, ClassifyGrowthStage("взрослое растение"))
	assert.Equal(t, domain.StageYoung, ClassifyGrowthStage("young seedling"))
	assert.Equal(t, domain.StageYoung, ClassifyGrowthStage("no stage words here"))
}

func TestParseInterval(t *testing.T) {
	text := "Your ficus looks healthy.\nWATERING_INTERVAL: 7\nKeep it in bright light."
	days, stripped, ok := ParseInterval(text)
	require.True(t, ok)
	assert.Equal(t, 7, days)
	assert.NotContains(t, stripped, "WATERING_INTERVAL")
	assert.Contains(t, stripped, "Your ficus looks healthy.")
	assert.Contains(t, stripped, "Keep it in bright light.")
}

func TestParseInterval_MissingMarker(t *testing.T) {
	_, stripped, ok := ParseInterval("no marker in this text")
	assert.False(t, ok)
	assert.Equal(t, "no marker in this text", stripped)
}

func TestParseInterval_UnparseableMarkerStillStripped(t *testing.T) {
	_, stripped, ok := ParseInterval("diagnosis text\nWATERING_INTERVAL: every few days")
	assert.False(t, ok)
	assert.NotContains(t, stripped, "WATERING_INTERVAL")
}

func TestParseInterval_FirstValueWins(t *testing.T) {
	days, stripped, ok := ParseInterval("WATERING_INTERVAL: 6\nWATERING_INTERVAL: 12")
	require.True(t, ok)
	assert.Equal(t, 6, days)
	assert.Empty(t, stripped)
}

func TestParseConfidence(t *testing.T) {
	assert.Equal(t, 85, ParseConfidence("SPECIES: Ficus\nCONFIDENCE: 85%"))
	assert.Equal(t, 40, ParseConfidence("CONFIDENCE: 40"))
	// Present but unparseable defaults to 70.
	assert.Equal(t, 70, ParseConfidence("CONFIDENCE: high"))
	// Absent marker yields 0.
	assert.Equal(t, 0, ParseConfidence("no marker at all"))
}

func TestParseSpecies(t *testing.T) {
	assert.Equal(t, "Ficus elastica", ParseSpecies("SPECIES: Ficus elastica\nCONFIDENCE: 90%"))
	assert.Empty(t, ParseSpecies("no species line"))
}

func TestExtract_ExplicitIntervalWins(t *testing.T) {
	days := 12
	ex := Extract("CURRENT_STATE: flowering\nGROWTH_STAGE: mature", &days, 10)

	assert.Equal(t, domain.StateFlowering, ex.State)
	assert.Equal(t, domain.StageMature, ex.GrowthStage)
	assert.Equal(t, -2, ex.WateringAdjustmentDays)
	// Explicit interval is used as-is; state adjustment applies only to
	// the season fallback path.
	assert.Equal(t, 12, ex.EffectiveWateringIntervalDays)
}

func TestExtract_ExplicitIntervalClamped(t *testing.T) {
	low, high := 1, 90
	assert.Equal(t, 3, Extract("", &low, 5).EffectiveWateringIntervalDays)
	assert.Equal(t, 28, Extract("", &high, 5).EffectiveWateringIntervalDays)
}

func TestExtract_SeasonFallbackWithStateAdjustment(t *testing.T) {
	// Dormancy adds +5 to the season fallback.
	ex := Extract("CURRENT_STATE: dormancy", nil, 10)
	assert.Equal(t, 15, ex.EffectiveWateringIntervalDays)

	// Flowering subtracts 2.
	ex = Extract("CURRENT_STATE: flowering", nil, 10)
	assert.Equal(t, 8, ex.EffectiveWateringIntervalDays)

	// Healthy passes the fallback through.
	ex = Extract("CURRENT_STATE: healthy", nil, 10)
	assert.Equal(t, 10, ex.EffectiveWateringIntervalDays)
}

func TestExtract_FeedingAdjustment(t *testing.T) {
	ex := Extract("CURRENT_STATE: active growth", nil, 5)
	require.NotNil(t, ex.FeedingAdjustmentDays)
	assert.Equal(t, 7, *ex.FeedingAdjustmentDays)

	ex = Extract("CURRENT_STATE: healthy", nil, 5)
	assert.Nil(t, ex.FeedingAdjustmentDays)
}

func TestExtract_ReasonAndRecommendations(t *testing.T) {
	text := "CURRENT_STATE: stress\nSTATE_REASON: yellowing lower leaves\nRECOMMENDATIONS: reduce watering, move away from radiator"
	ex := Extract(text, nil, 5)
	assert.Equal(t, domain.StateStress, ex.State)
	assert.Equal(t, "yellowing lower leaves", ex.StateReason)
	assert.Equal(t, "reduce watering, move away from radiator", ex.Recommendations)
}

func TestExtract_Defaults(t *testing.T) {
	ex := Extract("free text without any markers", nil, 5)
	assert.Equal(t, domain.StateHealthy, ex.State)
	assert.Equal(t, domain.StageYoung, ex.GrowthStage)
	assert.Equal(t, 0, ex.WateringAdjustmentDays)
	assert.Equal(t, 5, ex.EffectiveWateringIntervalDays)
}
