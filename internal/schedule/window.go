package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// EndOfDay is the exclusive upper bound used for periods ending at "24:00".
	EndOfDay      = 24 * 60
	endOfDayLabel = "24:00"
)

var errMissingPart = errors.New("missing component")

// ParseError reports a time label or period that could not be evaluated.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ToMinutes converts an "HH:MM" label into minutes since midnight.
func ToMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return 0, &ParseError{Value: hhmm, Err: errMissingPart}
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, &ParseError{Value: hhmm, Err: err}
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, &ParseError{Value: hhmm, Err: err}
	}
	return hours*60 + minutes, nil
}

// MinutesOfDay returns the minute offset of t within its day.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// IsNowInPeriod reports whether nowMinutes falls in the half-open period [from, to).
func IsNowInPeriod(period string, nowMinutes int) (bool, error) {
	w := splitPeriod(period)
	if err := w.err(); err != nil {
		return false, err
	}
	return w.contains(nowMinutes), nil
}

// Bounds returns the minute offsets [start, end) of a period.
func Bounds(period string) (start, end int, err error) {
	w := splitPeriod(period)
	if err := w.err(); err != nil {
		return 0, 0, err
	}
	return w.start, w.end, nil
}

// window is a period split into its labels and minute bounds. Each bound keeps
// its own parse error so a broken end does not hide a usable start.
type window struct {
	from, to   string
	start, end int
	startErr   error
	endErr     error
}

func splitPeriod(period string) window {
	parts := strings.Split(period, "-")
	w := window{from: strings.TrimSpace(parts[0])}
	w.start, w.startErr = ToMinutes(w.from)
	if len(parts) < 2 {
		w.endErr = &ParseError{Value: period, Err: errMissingPart}
		return w
	}
	w.to = strings.TrimSpace(parts[1])
	if w.to == endOfDayLabel {
		w.end = EndOfDay
	} else {
		w.end, w.endErr = ToMinutes(w.to)
	}
	return w
}

func (w window) err() error {
	if w.startErr != nil {
		return w.startErr
	}
	return w.endErr
}

func (w window) contains(now int) bool {
	return w.err() == nil && now >= w.start && now < w.end
}
