package schedule

import (
	"regexp"
	"strings"

	"outagemonitor/internal/models"
)

var (
	// queueRecordRe locates a queue marker followed by non-digit filler and the
	// first time label of its periods.
	queueRecordRe = regexp.MustCompile(`(\d\.\d)[^\d]*(\d{2}:\d{2})`)
	// nextQueueRe marks the start of the following record on a new line.
	nextQueueRe = regexp.MustCompile(`\n\d\.\d`)
)

type queueRecord struct {
	queue  string
	period string
}

// ExtractSchedule parses free-form article text into queue periods. Text
// without queue markers yields an empty schedule.
func ExtractSchedule(text string) models.Schedule {
	queues := make(models.Schedule)
	for _, rec := range queueRecords(text) {
		queues[rec.queue] = splitPeriods(rec.period)
	}
	return queues
}

// queueRecords returns every non-overlapping record in text. A record's block
// runs from its first time label up to the next line starting with a queue
// marker, or up to the trailing newlines of the text.
func queueRecords(text string) []queueRecord {
	tail := len(strings.TrimRight(text, "\n"))

	var records []queueRecord
	for offset := 0; offset < len(text); {
		loc := queueRecordRe.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			break
		}
		queue := text[offset+loc[2] : offset+loc[3]]
		blockStart := offset + loc[4]
		labelEnd := offset + loc[5]

		blockEnd := tail
		if next := nextQueueRe.FindStringIndex(text[labelEnd:]); next != nil && labelEnd+next[0] < blockEnd {
			blockEnd = labelEnd + next[0]
		}

		records = append(records, queueRecord{queue: queue, period: text[blockStart:blockEnd]})
		offset = blockEnd
	}
	return records
}

func splitPeriods(block string) []string {
	block = strings.ReplaceAll(block, "\n", " ")
	periods := make([]string, 0, strings.Count(block, ",")+1)
	for _, token := range strings.Split(block, ",") {
		token = strings.TrimSpace(strings.ReplaceAll(token, "–", "-"))
		if token == "" {
			continue
		}
		periods = append(periods, token)
	}
	return periods
}
