package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outagemonitor/internal/models"
)

func strPtr(s string) *string { return &s }

func TestResolveStatusInsideOffWindow(t *testing.T) {
	got, err := ResolveStatus([]string{"07:00-11:00", "15:00-19:00"}, 600)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatus{
		Status:  models.PowerOff,
		NextOff: strPtr("15:00"),
		NextOn:  strPtr("11:00"),
	}, got)
}

func TestResolveStatusEmptyMinutesIsParseError(t *testing.T) {
	got, err := ResolveStatus([]string{"10:-12:00"}, 300)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "10:", perr.Value)
	assert.Equal(t, models.QueueStatus{Status: models.PowerOn}, got)
}

func TestResolveStatusBetweenWindows(t *testing.T) {
	got, err := ResolveStatus([]string{"07:00-11:00", "15:00-19:00"}, 720)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatus{Status: models.PowerOn, NextOff: strPtr("15:00")}, got)
}

func TestResolveStatusAfterLastWindow(t *testing.T) {
	got, err := ResolveStatus([]string{"07:00-11:00"}, 1300)
	require.NoError(t, err)
	assert.Equal(t, models.PowerOn, got.Status)
	assert.Nil(t, got.NextOff)
	assert.Nil(t, got.NextOn)
}

func TestResolveStatusKeepsEndOfDayLabel(t *testing.T) {
	got, err := ResolveStatus([]string{"20:00-24:00"}, 1439)
	require.NoError(t, err)
	assert.Equal(t, models.PowerOff, got.Status)
	require.NotNil(t, got.NextOn)
	assert.Equal(t, "24:00", *got.NextOn)
}

func TestResolveStatusTieBreaks(t *testing.T) {
	// Overlapping windows: the last containing window decides NextOn while the
	// first future window decides NextOff.
	periods := []string{"08:00-12:00", "09:00-10:30", "13:00-14:00", "16:00-17:00"}
	got, err := ResolveStatus(periods, 600)
	require.NoError(t, err)
	assert.Equal(t, models.PowerOff, got.Status)
	assert.Equal(t, "10:30", *got.NextOn)
	assert.Equal(t, "13:00", *got.NextOff)
}

func TestResolveStatusEmpty(t *testing.T) {
	got, err := ResolveStatus(nil, 100)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatus{Status: models.PowerOn}, got)
}

func TestResolveStatusMalformedPeriods(t *testing.T) {
	periods := []string{"oops-11:00", "18:00-later", "20:00-21:00"}
	got, err := ResolveStatus(periods, 600)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.PowerOn, got.Status)
	require.NotNil(t, got.NextOff)
	assert.Equal(t, "18:00", *got.NextOff, "a broken end still offers its start")
}
