package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimeSlot = errors.New("start time must not be after end time")

type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if start.After(end) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

// Overlaps is inclusive on both boundaries: a slot ending exactly when
// another starts still counts as a conflict. Back-to-back bookings
// with no gap are therefore rejected.
func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return !ts.start.After(other.end) && !ts.end.Before(other.start)
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("[%s, %s]", ts.start.Format(time.RFC3339), ts.end.Format(time.RFC3339))
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: strings.TrimSpace(value)}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
