package schedule

import (
	"errors"
	"time"
)

var (
	ErrInvalidInterval   = errors.New("recurrence interval must be at least 1")
	ErrEndBeforeStart    = errors.New("recurrence end date is before the base start")
	ErrUnknownFrequency  = errors.New("unknown recurrence frequency")
	ErrMissingEndDate    = errors.New("recurrence end date is required")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
)

type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyNone, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// Rule describes how a base interval repeats. Until is an inclusive
// bound on instance start dates: an instance landing exactly on it is
// the last one emitted.
type Rule struct {
	Frequency  Frequency
	Interval   int
	Until      time.Time
	DaysOfWeek []time.Weekday // weekly only; empty means the base weekday
	DayOfMonth int            // monthly only; 0 means the base day-of-month
}

func (r Rule) Validate(baseStart time.Time) error {
	if !r.Frequency.IsValid() {
		return ErrUnknownFrequency
	}
	if r.Frequency == FrequencyNone {
		return nil
	}
	if r.Interval < 1 {
		return ErrInvalidInterval
	}
	if r.Until.IsZero() {
		return ErrMissingEndDate
	}
	if dateOf(r.Until).Before(dateOf(baseStart)) {
		return ErrEndBeforeStart
	}
	if r.Frequency == FrequencyMonthly && (r.DayOfMonth < 0 || r.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
