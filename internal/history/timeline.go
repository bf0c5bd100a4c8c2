package history

import (
	"time"

	"outagemonitor/internal/models"
	"outagemonitor/internal/schedule"
)

const (
	// DefaultTimelinePoints splits the day into hourly buckets.
	DefaultTimelinePoints = 24
	maxTimelinePoints     = schedule.EndOfDay
	maxDetailsPerPoint    = 4
)

type offWindow struct {
	period     string
	start, end int
}

// BuildQueueTimeline converts a queue's off-periods into a compact day
// timeline starting at day (midnight in the schedule's timezone). Periods that
// do not parse are left out.
func BuildQueueTimeline(queue string, periods []string, day time.Time, points int) models.QueueTimeline {
	if points <= 0 {
		points = DefaultTimelinePoints
	}
	if points > maxTimelinePoints {
		points = maxTimelinePoints
	}

	windows := make([]offWindow, 0, len(periods))
	for _, period := range periods {
		start, end, err := schedule.Bounds(period)
		if err != nil || end <= start {
			continue
		}
		windows = append(windows, offWindow{period: period, start: start, end: end})
	}

	timeline := make([]models.TimelinePoint, 0, points)
	for i := 0; i < points; i++ {
		bucketStart := i * schedule.EndOfDay / points
		bucketEnd := (i + 1) * schedule.EndOfDay / points
		off, details := evaluateBucket(windows, bucketStart, bucketEnd)
		class, label := classify(off, bucketEnd-bucketStart)
		timeline = append(timeline, models.TimelinePoint{
			ClassName:  class,
			Label:      label,
			Start:      day.Add(time.Duration(bucketStart) * time.Minute),
			End:        day.Add(time.Duration(bucketEnd) * time.Minute),
			OffMinutes: off,
			Details:    details,
		})
	}
	return models.QueueTimeline{Queue: queue, Timeline: timeline}
}

// evaluateBucket counts the off minutes of [start, end) covered by any window.
func evaluateBucket(windows []offWindow, start, end int) (int, []models.TimelineDetail) {
	var details []models.TimelineDetail
	covered := make([]bool, end-start)
	for _, w := range windows {
		from, to := max(w.start, start), min(w.end, end)
		if from >= to {
			continue
		}
		for m := from; m < to; m++ {
			covered[m-start] = true
		}
		if len(details) < maxDetailsPerPoint {
			details = append(details, models.TimelineDetail{Period: w.period})
		}
	}

	off := 0
	for _, c := range covered {
		if c {
			off++
		}
	}
	return off, details
}

func classify(off, length int) (className, label string) {
	switch {
	case off == 0:
		return "state-on", "Power on"
	case off >= length:
		return "state-off", "Power off"
	default:
		return "state-partial", "Partial outage"
	}
}
