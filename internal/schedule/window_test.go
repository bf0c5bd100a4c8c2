package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"07:30": 450,
		"10:00": 600,
		"23:59": 1439,
		"24:00": 1440,
		" 9:05": 545,
	}
	for in, want := range cases {
		got, err := ToMinutes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestToMinutesMonotonic(t *testing.T) {
	labels := []string{"00:00", "00:01", "00:59", "01:00", "09:30", "12:00", "18:45", "23:59"}
	prev := -1
	for _, label := range labels {
		got, err := ToMinutes(label)
		require.NoError(t, err)
		assert.Greater(t, got, prev, label)
		prev = got
	}
}

func TestToMinutesRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "10", "ab:00", "10:xx", "10-00"} {
		_, err := ToMinutes(in)
		var perr *ParseError
		require.ErrorAs(t, err, &perr, in)
		assert.Equal(t, in, perr.Value)
	}
}

func TestIsNowInPeriodBoundaries(t *testing.T) {
	in, err := IsNowInPeriod("23:00-24:00", 1439)
	require.NoError(t, err)
	assert.True(t, in)

	in, err = IsNowInPeriod("23:00-24:00", 1440)
	require.NoError(t, err)
	assert.False(t, in)

	in, err = IsNowInPeriod("10:00-14:00", 600)
	require.NoError(t, err)
	assert.True(t, in, "start is inclusive")

	in, err = IsNowInPeriod("10:00-14:00", 840)
	require.NoError(t, err)
	assert.False(t, in, "end is exclusive")

	in, err = IsNowInPeriod(" 10:00 - 14:00 ", 700)
	require.NoError(t, err)
	assert.True(t, in)
}

func TestIsNowInPeriodMalformed(t *testing.T) {
	for _, period := range []string{"10:00", "later-14:00", "10:00-soon"} {
		in, err := IsNowInPeriod(period, 700)
		assert.False(t, in)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, period)
	}
}

func TestMinutesOfDay(t *testing.T) {
	ts := time.Date(2024, time.March, 3, 17, 42, 31, 0, time.UTC)
	assert.Equal(t, 17*60+42, MinutesOfDay(ts))
}
