package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinEnd(t *testing.T) {
	early := Bounded(NewDate(2025, 1, 10))
	late := Bounded(NewDate(2025, 3, 1))

	assert.Equal(t, early, MinEnd(early, late))
	assert.Equal(t, early, MinEnd(late, early))
	assert.Equal(t, late, MinEnd(Unbounded(), late))
	assert.Equal(t, late, MinEnd(late, Unbounded()))
	assert.True(t, MinEnd(Unbounded(), Unbounded()).IsUnbounded())
}

func TestEndDate_Before(t *testing.T) {
	end := Bounded(NewDate(2025, 1, 10))

	assert.True(t, end.Before(NewDate(2025, 1, 11)))
	assert.False(t, end.Before(NewDate(2025, 1, 10)))
	assert.False(t, Unbounded().Before(NewDate(9999, 12, 31)))
}

func TestEndDate_Contains(t *testing.T) {
	start := NewDate(2025, 1, 1)
	end := Bounded(NewDate(2025, 1, 31))

	assert.True(t, end.Contains(start, start))
	assert.True(t, end.Contains(start, NewDate(2025, 1, 31)))
	assert.False(t, end.Contains(start, NewDate(2025, 2, 1)))
	assert.False(t, end.Contains(start, NewDate(2024, 12, 31)))
	assert.True(t, Unbounded().Contains(start, NewDate(2100, 1, 1)))
}

func TestEndDate_ZeroValueIsUnbounded(t *testing.T) {
	var e EndDate
	assert.True(t, e.IsUnbounded())
	assert.Nil(t, e.Ptr())
}

func TestEndDate_ScanValueJSON(t *testing.T) {
	var e EndDate
	require.NoError(t, e.Scan(nil))
	assert.True(t, e.IsUnbounded())

	require.NoError(t, e.Scan(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)))
	d, ok := e.Date()
	require.True(t, ok)
	assert.Equal(t, "2025-05-02", FormatDate(d))

	v, err := Unbounded().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	raw, err := json.Marshal(struct {
		End EndDate `json:"end"`
	}{End: Unbounded()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"end":null}`, string(raw))

	var decoded struct {
		End EndDate `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"end":"2025-06-30"}`), &decoded))
	assert.Equal(t, "2025-06-30", decoded.End.String())
}
