package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndEndOfDay(t *testing.T) {
	// 2025-06-10 03:30 UTC is still 2025-06-09 in Pacific (PDT, UTC-7)
	utc := time.Date(2025, 6, 10, 3, 30, 0, 0, time.UTC)

	start := StartOfDay(utc)
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, time.June, start.Month())
	assert.Equal(t, 9, start.Day())
	assert.Equal(t, 0, start.Hour())

	end := EndOfDay(utc)
	assert.Equal(t, 9, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.True(t, end.After(start))
}

func TestParseInPacific(t *testing.T) {
	got, err := ParseInPacific(DateLayout, "2025-06-09")
	require.NoError(t, err)
	assert.Equal(t, Pacific, got.Location())
	assert.Equal(t, 9, got.Day())

	_, err = ParseInPacific(DateLayout, "06/09/2025")
	assert.Error(t, err)
}
