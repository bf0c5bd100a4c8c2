package metrics

import (
	"math"
	"sort"

	"outagemonitor/internal/models"
	"outagemonitor/internal/schedule"
)

const minutesPerDay = schedule.EndOfDay

// QueueSupply summarises scheduled supply of a queue over one day.
type QueueSupply struct {
	Queue         string  `json:"queue"`
	Periods       int     `json:"periods"`
	OffMinutes    int     `json:"off_minutes"`
	OnMinutes     int     `json:"on_minutes"`
	SupplyPercent float64 `json:"supply_percent"`
	Invalid       int     `json:"invalid_periods,omitempty"`
}

type span struct{ start, end int }

// ComputeQueueSupply aggregates scheduled off-time per queue. Overlapping
// periods are merged so no minute is counted twice; periods that do not parse
// are counted as invalid and otherwise ignored.
func ComputeQueueSupply(queues models.Schedule) []QueueSupply {
	if len(queues) == 0 {
		return nil
	}

	keys := make([]string, 0, len(queues))
	for k := range queues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]QueueSupply, 0, len(keys))
	for _, queue := range keys {
		periods := queues[queue]
		spans := make([]span, 0, len(periods))
		invalid := 0
		for _, period := range periods {
			start, end, err := schedule.Bounds(period)
			if err != nil {
				invalid++
				continue
			}
			start, end = clamp(start), clamp(end)
			if end > start {
				spans = append(spans, span{start, end})
			}
		}

		off := mergedLength(spans)
		results = append(results, QueueSupply{
			Queue:         queue,
			Periods:       len(periods),
			OffMinutes:    off,
			OnMinutes:     minutesPerDay - off,
			SupplyPercent: round2(float64(minutesPerDay-off) / minutesPerDay * 100),
			Invalid:       invalid,
		})
	}
	return results
}

func mergedLength(spans []span) int {
	if len(spans) == 0 {
		return 0
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	total := 0
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.start <= cur.end {
			if s.end > cur.end {
				cur.end = s.end
			}
			continue
		}
		total += cur.end - cur.start
		cur = s
	}
	return total + cur.end - cur.start
}

func clamp(minute int) int {
	return max(0, min(minute, minutesPerDay))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
