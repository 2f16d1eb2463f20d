package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "2h 5m", FormatMinutes(125))
	assert.Equal(t, "40h", FormatMinutes(2400))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LoadNormal, LevelFor(0))
	assert.Equal(t, LoadNormal, LevelFor(59))
	assert.Equal(t, LoadElevated, LevelFor(60))
	assert.Equal(t, LoadHigh, LevelFor(80))
	assert.Equal(t, LoadHigh, LevelFor(99))
	assert.Equal(t, LoadOver, LevelFor(100))
	assert.Equal(t, LoadOver, LevelFor(250))
}

func TestFormatWhen(t *testing.T) {
	assert.Equal(t, "Today 18:30", FormatWhen(time.Date(2026, 10, 14, 18, 30, 0, 0, testZone), testNow))
	assert.Equal(t, "Tomorrow 07:05", FormatWhen(time.Date(2026, 10, 15, 7, 5, 0, 0, testZone), testNow))
	assert.Equal(t, "Oct 20", FormatWhen(time.Date(2026, 10, 20, 9, 0, 0, 0, testZone), testNow))
	// 03:00 UTC on the 15th is 22:00 on the 14th in UTC-5.
	assert.Equal(t, "Today 22:00", FormatWhen(time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC), testNow))
}
