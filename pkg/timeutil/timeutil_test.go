package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSameDay(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.True(t, IsSameDay(base, base.Add(5*time.Hour)))
	assert.False(t, IsSameDay(base, base.Add(15*time.Hour)))
	assert.False(t, IsSameDay(base, base.AddDate(1, 0, 0)))
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(base, base))
	assert.Equal(t, 1, DaysBetween(base, base.Add(time.Hour)))
	assert.Equal(t, 7, DaysBetween(base, base.AddDate(0, 0, 7)))
	// Order does not matter.
	assert.Equal(t, 7, DaysBetween(base.AddDate(0, 0, 7), base))
}

func TestStartOfDay(t *testing.T) {
	base := time.Date(2026, 3, 14, 17, 45, 12, 999, time.UTC)
	start := StartOfDay(base)

	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, base.Day(), start.Day())
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "только что", FormatRelative(Now().Add(-30*time.Second)))
	assert.Equal(t, "5 мин назад", FormatRelative(Now().Add(-5*time.Minute)))
	assert.Equal(t, "3 ч назад", FormatRelative(Now().Add(-3*time.Hour)))
	assert.Equal(t, "вчера", FormatRelative(Now().Add(-25*time.Hour)))
}
