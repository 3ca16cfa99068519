package diagnosis

import (
	"fmt"
	"strings"

	"github.com/Kamilla170/bloom/internal/season"
)

const observeSystemPrompt = `You are a professional botanist with 30 years of diagnostic experience.
Identify plants precisely and assess their condition from observable evidence only.
Always factor the current season into watering notes.`

const diagnoseSystemPrompt = `You are a professional botanist-consultant.
Style: authoritative but accessible, concrete recommendations grounded in facts,
structured as diagnosis, cause, action plan, expected result and timeline.
Do not use markdown formatting. Always account for the current season:
watering drops sharply in winter and peaks in summer.`

const recalibrateSystemPrompt = `You are a houseplant care expert.
Answer with a single number: the days between waterings.`

func observeUserPrompt(question, previousState string, sc season.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Examine the photo and describe what you see.

Current season: %s (%s). %s. %s.

Reply in plain text with these marker lines first:
SPECIES: <species guess>
CONFIDENCE: <0-100>%%
CURRENT_STATE: <healthy|flowering|active_growth|dormancy|stress|adaptation>
STATE_REASON: <one sentence grounded in visible evidence>
GROWTH_STAGE: <young|mature|old>

Then enumerate:
- visible symptoms, one per line
- possible problems, one per line`,
		sc.Label, sc.GrowthPhase, sc.WateringBias, sc.LightNote)

	if previousState != "" {
		fmt.Fprintf(&b, "\n\nPrevious recorded state: %s. Note what has changed, considering seasonal factors.", previousState)
	}
	if question != "" {
		fmt.Fprintf(&b, "\n\nAdditional question from the owner: %s", question)
	}
	return b.String()
}

func diagnoseUserPrompt(observations, history string, sc season.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Observations from the photo:
%s

Current season: %s (%s).
Watering: %s. Feeding: %s. Temperature: %s.
%s`, observations, sc.Label, sc.GrowthPhase, sc.WateringBias, sc.FeedingNote, sc.TemperatureNote, sc.Recommendations)

	if history != "" {
		fmt.Fprintf(&b, "\n\nPlant history:\n%s", history)
	}

	b.WriteString(`

Write a plain-text explanation in four paragraphs: diagnosis, cause,
action plan with exact parameters, expected result and when to check.
Include one line starting with RECOMMENDATIONS: summarizing care changes.
End with exactly one line of the form:
WATERING_INTERVAL: <days>`)
	return b.String()
}

func recalibrateUserPrompt(species string, currentInterval int, sc season.Context) string {
	return fmt.Sprintf(`Plant: %s
Current watering interval: %d days
Season: %s (%s)

Rules:
- winter: most plants are watered 1.5-2.5x less often
- spring: gradually increase watering
- summer: maximal watering frequency (shortest interval)
- autumn: gradually reduce watering
- succulents and cacti in winter: 21-28 days
- tropical species in winter: 10-14 days
- flowering plants need more water even in winter

Considering the species and the season, what should the interval be?
Answer with ONE number between %d and %d.`,
		species, currentInterval, sc.Label, sc.GrowthPhase, 3, 28)
}

// fallbackObservation is the fixed template returned when the vision step
// fails twice. The user always receives some actionable result.
func fallbackObservation(sc season.Context, interval int) string {
	return fmt.Sprintf(`SPECIES: Houseplant (identification required)
CONFIDENCE: 20%%
CURRENT_STATE: healthy
STATE_REASON: Not enough data from the photo
GROWTH_STAGE: young
The substrate is not visible in the photo, so watering cannot be assessed.
Check soil moisture at a depth of 2-3 cm before watering.
Light: bright indirect. %s
Temperature: %s
RECOMMENDATIONS: Retake the photo in good light for an accurate identification. %s
WATERING_INTERVAL: %d`, sc.LightNote, sc.TemperatureNote, sc.WateringBias, interval)
}
