package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(9, 30, 0), got)
	assert.Equal(t, "09:30", got.String())

	got, err = ParseTimeOfDay("23:15:10")
	require.NoError(t, err)
	assert.Equal(t, "23:15:10", got.String())

	_, err = ParseTimeOfDay("9.30")
	assert.Error(t, err)
}

func TestRangesOverlapClosed(t *testing.T) {
	h := func(hour int) TimeOfDay { return NewTimeOfDay(hour, 0, 0) }

	assert.True(t, RangesOverlapClosed(h(9), h(10), h(9), h(10)))
	assert.True(t, RangesOverlapClosed(h(9), h(10), h(10), h(11)), "touching boundary overlaps")
	assert.True(t, RangesOverlapClosed(StartOfDay, h(6), h(5), h(7)))
	assert.False(t, RangesOverlapClosed(h(9), h(10), h(11), h(12)))
}

func TestTimeOfDay_ScanValue(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("14:05:00"))
	assert.Equal(t, NewTimeOfDay(14, 5, 0), tod)

	require.NoError(t, tod.Scan(time.Date(0, 1, 1, 7, 45, 0, 0, time.UTC)))
	assert.Equal(t, NewTimeOfDay(7, 45, 0), tod)

	v, err := EndOfDay.Value()
	require.NoError(t, err)
	assert.Equal(t, "23:59:59.999999", v)
}

func TestTimeOfDay_On(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	at := NewTimeOfDay(9, 0, 0).On(NewDate(2025, 7, 14), loc)
	assert.Equal(t, time.Date(2025, 7, 14, 7, 0, 0, 0, time.UTC), at.UTC())
}

func TestTimeOfDay_OnKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on 2025-03-30.
	at := NewTimeOfDay(9, 0, 0).On(NewDate(2025, 3, 30), loc)
	assert.Equal(t, 9, at.Hour())
	assert.Equal(t, time.Date(2025, 3, 30, 7, 0, 0, 0, time.UTC), at.UTC())
}
