package civil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDays(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		days  int
		want  string
	}{
		{"thirty days in june", NewDate(2025, 6, 15), 30, "2025-07-15"},
		{"day after month end", NewDate(2025, 6, 30), 1, "2025-07-01"},
		{"leap day", NewDate(2024, 2, 28), 1, "2024-02-29"},
		{"year boundary", NewDate(2025, 12, 31), 1, "2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.AddDays(tt.days).String())
		})
	}
}

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2025-06-14 23:30 UTC is already 2025-06-15 in Tokyo.
	instant := time.Date(2025, 6, 14, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-06-14", DateOf(instant).String())
	assert.Equal(t, "2025-06-15", DateOf(instant.In(tokyo)).String())
}

func TestCompare(t *testing.T) {
	a := NewDate(2025, 6, 30)
	b := NewDate(2025, 7, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(NewDate(2025, 6, 30)))
	assert.False(t, a.After(a))
}

func TestJSON(t *testing.T) {
	payload := struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}{Start: NewDate(2025, 7, 1)}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-07-01","end":null}`, string(data))

	var decoded struct {
		Start Date `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-07-31"}`), &decoded))
	assert.Equal(t, NewDate(2025, 7, 31), decoded.Start)

	assert.Error(t, json.Unmarshal([]byte(`{"start":"31/07/2025"}`), &decoded))
}

func TestScan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-07-01", d.String())

	require.NoError(t, d.Scan("2025-07-31T00:00:00Z"))
	assert.Equal(t, "2025-07-31", d.String())

	require.NoError(t, d.Scan([]byte("2025-08-01")))
	assert.Equal(t, "2025-08-01", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestValue(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewDate(2025, 6, 15).Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), v)
}
