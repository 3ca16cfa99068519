// Package season maps calendar dates to a horticultural season and the
// qualitative care bias handed to the reasoning model. It is pure: the
// model decides actual intervals, season only supplies context and the
// fallback nudge used when model output cannot be parsed.
package season

import "time"

type Label string

const (
	Winter Label = "winter"
	Spring Label = "spring"
	Summer Label = "summer"
	Autumn Label = "autumn"
)

// Context describes the current season for prompt construction and
// fallback defaults.
type Context struct {
	Label            Label
	GrowthPhase      string
	WateringBias     string
	LightNote        string
	TemperatureNote  string
	FeedingNote      string
	Recommendations  string
	IntervalNudgeDays int
}

// Current returns the seasonal context for the given time. Northern
// hemisphere months: Dec-Feb winter, Mar-May spring, Jun-Aug summer,
// Sep-Nov autumn.
func Current(t time.Time) Context {
	switch t.Month() {
	case time.December, time.January, time.February:
		return Context{
			Label:            Winter,
			GrowthPhase:      "dormant period",
			WateringBias:     "reduce watering 1.5-2.5x",
			LightNote:        "short daylight (7-9 hours)",
			TemperatureNote:  "keep 16-20C, avoid drafts and radiator heat",
			FeedingNote:      "stop feeding, or at most monthly at half dose",
			Recommendations:  "Most plants rest. Cut watering back and stop feeding; overwatering now risks root rot.",
			IntervalNudgeDays: 5,
		}
	case time.March, time.April, time.May:
		return Context{
			Label:            Spring,
			GrowthPhase:      "start of vegetation",
			WateringBias:     "gradually increase watering",
			LightNote:        "lengthening daylight (11-15 hours)",
			TemperatureNote:  "keep 18-22C",
			FeedingNote:      "resume feeding at half dose, build to full every 2 weeks",
			Recommendations:  "Plants wake from dormancy. Increase watering step by step, resume feeding; best time to repot.",
			IntervalNudgeDays: 0,
		}
	case time.June, time.July, time.August:
		return Context{
			Label:            Summer,
			GrowthPhase:      "active vegetation",
			WateringBias:     "maximal watering frequency",
			LightNote:        "long daylight (15-18 hours)",
			TemperatureNote:  "keep 20-26C, ventilate in heat",
			FeedingNote:      "regular feeding every 1-2 weeks at full dose",
			Recommendations:  "Peak activity. Water regularly, never let the substrate dry out fully; feed every 1-2 weeks.",
			IntervalNudgeDays: -2,
		}
	default:
		return Context{
			Label:            Autumn,
			GrowthPhase:      "preparing for dormancy",
			WateringBias:     "gradually reduce watering",
			LightNote:        "shortening daylight (10-12 hours)",
			TemperatureNote:  "keep 18-22C, lower gradually",
			FeedingNote:      "taper feeding, stop by late autumn for most species",
			Recommendations:  "Plants wind down. Reduce watering and feeding gradually; stop feeding by mid-autumn.",
			IntervalNudgeDays: 2,
		}
	}
}

// FallbackInterval is the season-dependent default watering interval used
// when the model asserts nothing parseable: the species-agnostic base plus
// the seasonal nudge, clamped by the caller.
func (c Context) FallbackInterval(base int) int {
	return base + c.IntervalNudgeDays
}
