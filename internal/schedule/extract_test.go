package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"outagemonitor/internal/models"
)

func TestExtractScheduleBasic(t *testing.T) {
	got := ExtractSchedule("2.1 10:00-14:00, 16:00-18:00\n2.2 08:00-09:30")
	assert.Equal(t, models.Schedule{
		"2.1": {"10:00-14:00", "16:00-18:00"},
		"2.2": {"08:00-09:30"},
	}, got)
}

func TestExtractScheduleEmpty(t *testing.T) {
	got := ExtractSchedule("")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, ExtractSchedule("no queues announced today"))
}

func TestExtractScheduleNormalizesEnDash(t *testing.T) {
	dashed := ExtractSchedule("1.1 10:00–14:00, 16:00 – 18:00")
	plain := ExtractSchedule("1.1 10:00-14:00, 16:00 - 18:00")
	assert.Equal(t, plain, dashed)
	assert.Equal(t, []string{"10:00-14:00", "16:00 - 18:00"}, dashed["1.1"])
}

func TestExtractScheduleMultiLineBlock(t *testing.T) {
	text := "Графік відключень:\n3.1: 00:00-02:00,\n05:00-07:00,\n\n3.2 – 02:00-04:00\n\n"
	got := ExtractSchedule(text)
	assert.Equal(t, models.Schedule{
		"3.1": {"00:00-02:00", "05:00-07:00"},
		"3.2": {"02:00-04:00"},
	}, got)
}

func TestExtractScheduleLastOccurrenceWins(t *testing.T) {
	got := ExtractSchedule("1.1 08:00-10:00\n1.1 12:00-14:00")
	assert.Equal(t, models.Schedule{"1.1": {"12:00-14:00"}}, got)
}

func TestExtractScheduleKeepsUnvalidatedTokens(t *testing.T) {
	got := ExtractSchedule("4.2 10:00-12:00, до кінця доби")
	assert.Equal(t, []string{"10:00-12:00", "до кінця доби"}, got["4.2"])
}

func TestExtractScheduleSkipsMarkersWithoutTimes(t *testing.T) {
	got := ExtractSchedule("Оновлено 19.10 о 12:00\n5.1 14:00-16:00")
	assert.Equal(t, []string{"14:00-16:00"}, got["5.1"])
}

func TestExtractScheduleIdempotent(t *testing.T) {
	text := "1.1 00:00-04:00, 08:00-12:00\n1.2 04:00-08:00\n2.1 12:00-24:00"
	assert.Equal(t, ExtractSchedule(text), ExtractSchedule(text))
}
