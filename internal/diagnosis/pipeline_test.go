package diagnosis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Kamilla170/bloom/internal/llm"
	"github.com/Kamilla170/bloom/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testModels = Models{
	Vision:   "vision-model",
	Primary:  "primary-model",
	Fallback: "fallback-model",
}

// january pins the season to winter so fallback intervals are stable.
func january() time.Time {
	return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
}

func visionPayload(confidence int) string {
	return fmt.Sprintf(`SPECIES: Ficus elastica
CONFIDENCE: %d%%
CURRENT_STATE: healthy
GROWTH_STAGE: mature
Leaves are firm and glossy, soil surface is slightly dry to the touch.`, confidence)
}

func newTestPipeline(client llm.ModelClient) *Pipeline {
	return NewPipeline(client, testModels, january, nil)
}

func TestAnalyze_HappyPath(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptText(visionPayload(85))
	client.ScriptText("Water moderately and keep warm.\nWATERING_INTERVAL: 7\nRECOMMENDATIONS: mist the leaves weekly")

	res, err := newTestPipeline(client).Analyze(context.Background(), AnalyzeRequest{Image: []byte("jpeg")})
	require.NoError(t, err)

	assert.Equal(t, SourceModel, res.Source)
	assert.False(t, res.NeedsRetry)
	assert.Equal(t, 85, res.Confidence)
	assert.Equal(t, "Ficus elastica", res.SpeciesName)
	assert.Equal(t, 7, res.Extraction.EffectiveWateringIntervalDays)
	assert.NotContains(t, res.DiagnosisText, "WATERING_INTERVAL")
	require.Len(t, client.Calls, 2)
	assert.Equal(t, "vision-model", client.Calls[0].Model)
	assert.Equal(t, "primary-model", client.Calls[1].Model)
	assert.NotEmpty(t, client.Calls[0].ImageJPEG)
}

func TestAnalyze_LowConfidenceRetriesOnce(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptText(visionPayload(40))
	client.ScriptText(visionPayload(40))
	client.ScriptText("Hard to judge from this photo.\nWATERING_INTERVAL: 6")

	res, err := newTestPipeline(client).Analyze(context.Background(), AnalyzeRequest{Image: []byte("jpeg")})
	require.NoError(t, err)

	// Both attempts stayed under the threshold: the result is still a
	// real diagnosis, flagged for a better photo.
	assert.Equal(t, SourceModel, res.Source)
	assert.True(t, res.NeedsRetry)
	assert.Equal(t, 40, res.Confidence)
	assert.NotEmpty(t, res.DiagnosisText)
	assert.Len(t, client.Calls, 3)
}

func TestAnalyze_RetryRecoversConfidence(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptText(visionPayload(40))
	client.ScriptText(visionPayload(90))
	client.ScriptText("All good.\nWATERING_INTERVAL: 8")

	res, err := newTestPipeline(client).Analyze(context.Background(), AnalyzeRequest{Image: []byte("jpeg")})
	require.NoError(t, err)

	assert.False(t, res.NeedsRetry)
	assert.Equal(t, 90, res.Confidence)
}

func TestAnalyze_FallbackAfterTwoObserveFailures(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptError(llm.ErrUnavailable)
	client.ScriptError(llm.ErrUnavailable)

	res, err := newTestPipeline(client).Analyze(context.Background(), AnalyzeRequest{Image: []byte("jpeg")})
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, res.Source)
	assert.True(t, res.NeedsRetry)
	assert.Equal(t, 20, res.Confidence)
	assert.Empty(t, res.SpeciesName)
	assert.NotEmpty(t, res.DiagnosisText)
	assert.NotContains(t, res.DiagnosisText, "WATERING_INTERVAL")
	// Winter fallback: default 5 plus the +5 winter nudge.
	assert.Equal(t, 10, res.Extraction.EffectiveWateringIntervalDays)
	// Diagnose is never attempted on the fallback path.
	assert.Len(t, client.Calls, 2)
}

func TestAnalyze_ShortPayloadCountsAsFailure(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptText("too short")
	client.ScriptText("still short")

	res, err := newTestPipeline(client).Analyze(context.Background(), AnalyzeRequest{Image: []byte("jpeg")})
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, res.Source)
	assert.Len(t, client.Calls, 2)
}

func TestAnalyze_VisionOnlyWhenDiagnoseFails(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptText(visionPayload(85))
	client.ScriptError(llm.ErrUnavailable) // primary reasoning
	client.ScriptError(llm.ErrUnavailable) // fallback reasoning

	res, err := newTestPipeline(client).Analyze(context.Background(), AnalyzeRequest{Image: []byte("jpeg")})
	require.NoError(t, err)

	assert.Equal(t, SourceVisionOnly, res.Source)
	assert.Equal(t, res.VisionText, res.DiagnosisText)
	assert.Equal(t, 85, res.Confidence)
	assert.Equal(t, "Ficus elastica", res.SpeciesName)
	// No explicit interval: winter season default applies.
	assert.Equal(t, 10, res.Extraction.EffectiveWateringIntervalDays)
}

func TestAnalyze_ReasoningFallbackModelOnError(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptText(visionPayload(85))
	client.ScriptError(llm.ErrUnavailable)
	client.ScriptText("Recovered diagnosis.\nWATERING_INTERVAL: 9")

	res, err := newTestPipeline(client).Analyze(context.Background(), AnalyzeRequest{Image: []byte("jpeg")})
	require.NoError(t, err)

	assert.Equal(t, SourceModel, res.Source)
	assert.Equal(t, 9, res.Extraction.EffectiveWateringIntervalDays)
	require.Len(t, client.Calls, 3)
	assert.Equal(t, "primary-model", client.Calls[1].Model)
	assert.Equal(t, "fallback-model", client.Calls[2].Model)
}

func TestAnalyze_ContextCancellationPropagates(t *testing.T) {
	client := &testutil.ScriptedModelClient{}
	client.ScriptError(context.Canceled)
	client.ScriptError(context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPipeline(client).Analyze(ctx, AnalyzeRequest{Image: []byte("jpeg")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecalibrateInterval(t *testing.T) {
	t.Run("accepts model answer", func(t *testing.T) {
		client := &testutil.ScriptedModelClient{}
		client.ScriptText("10")
		got := newTestPipeline(client).RecalibrateInterval(context.Background(), "Ficus", 7)
		assert.Equal(t, 10, got)
	})

	t.Run("clamps out-of-range answer", func(t *testing.T) {
		client := &testutil.ScriptedModelClient{}
		client.ScriptText("45")
		got := newTestPipeline(client).RecalibrateInterval(context.Background(), "Ficus", 7)
		assert.Equal(t, 28, got)
	})

	t.Run("keeps interval on call failure", func(t *testing.T) {
		client := &testutil.ScriptedModelClient{}
		client.ScriptError(llm.ErrTimeout)
		got := newTestPipeline(client).RecalibrateInterval(context.Background(), "Ficus", 7)
		assert.Equal(t, 7, got)
	})

	t.Run("keeps interval on numberless answer", func(t *testing.T) {
		client := &testutil.ScriptedModelClient{}
		client.ScriptText("water it when the soil feels dry")
		got := newTestPipeline(client).RecalibrateInterval(context.Background(), "Ficus", 7)
		assert.Equal(t, 7, got)
	})
}
