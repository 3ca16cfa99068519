package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dateIn(month time.Month) time.Time {
	return time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC)
}

func TestCurrent_MonthMapping(t *testing.T) {
	cases := []struct {
		month time.Month
		want  Label
	}{
		{time.January, Winter},
		{time.February, Winter},
		{time.March, Spring},
		{time.May, Spring},
		{time.June, Summer},
		{time.August, Summer},
		{time.September, Autumn},
		{time.November, Autumn},
		{time.December, Winter},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Current(dateIn(tc.month)).Label, "month %s", tc.month)
	}
}

func TestCurrent_IntervalNudges(t *testing.T) {
	assert.Equal(t, 5, Current(dateIn(time.January)).IntervalNudgeDays)
	assert.Equal(t, 0, Current(dateIn(time.April)).IntervalNudgeDays)
	assert.Equal(t, -2, Current(dateIn(time.July)).IntervalNudgeDays)
	assert.Equal(t, 2, Current(dateIn(time.October)).IntervalNudgeDays)
}

func TestFallbackInterval(t *testing.T) {
	winter := Current(dateIn(time.January))
	assert.Equal(t, 10, winter.FallbackInterval(5))

	summer := Current(dateIn(time.July))
	assert.Equal(t, 3, summer.FallbackInterval(5))
}

func TestCurrent_Deterministic(t *testing.T) {
	a := Current(dateIn(time.June))
	b := Current(dateIn(time.June))
	assert.Equal(t, a, b)
}
