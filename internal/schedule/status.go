package schedule

import (
	"errors"

	"outagemonitor/internal/models"
)

// ResolveStatus computes the supply state of a queue whose periods are off-windows.
//
// Every period is inspected: the last window containing now sets NextOn, while
// the first window starting after now sets NextOff. Periods that fail to parse
// are skipped and their errors returned joined next to the computed status.
func ResolveStatus(periods []string, nowMinutes int) (models.QueueStatus, error) {
	status := models.QueueStatus{Status: models.PowerOn}
	var errs []error

	for _, period := range periods {
		w := splitPeriod(period)
		if err := w.err(); err != nil {
			errs = append(errs, err)
		}

		switch {
		case w.contains(nowMinutes):
			status.Status = models.PowerOff
			nextOn := w.to
			status.NextOn = &nextOn
		case w.startErr == nil && nowMinutes < w.start && status.NextOff == nil:
			nextOff := w.from
			status.NextOff = &nextOff
		}
	}

	return status, errors.Join(errs...)
}
