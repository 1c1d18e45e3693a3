package schedule

import (
	"sort"
	"time"
)

// Interval is one concrete candidate occurrence. Every expanded
// interval keeps the base time-of-day and duration.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Expand turns a rule and a base interval into the ordered, finite
// list of occurrences. It is pure: expanding the same inputs twice
// yields identical sequences.
//
// Occurrences are bounded by rule.Until inclusive of the end date
// itself, and never start before the base interval. If the rule
// selects no date at all (e.g. a weekday set that skips the base
// week entirely before the bound), the base interval alone is
// returned so a reservation is always writable.
func Expand(baseStart, baseEnd time.Time, rule Rule) ([]Interval, error) {
	if err := rule.Validate(baseStart); err != nil {
		return nil, err
	}

	if rule.Frequency == FrequencyNone {
		return []Interval{{Start: baseStart, End: baseEnd}}, nil
	}

	duration := baseEnd.Sub(baseStart)
	until := dateOf(rule.Until)

	var starts []time.Time
	switch rule.Frequency {
	case FrequencyWeekly:
		starts = expandWeekly(baseStart, rule, until)
	case FrequencyMonthly:
		starts = expandMonthly(baseStart, rule, until)
	}

	if len(starts) == 0 {
		return []Interval{{Start: baseStart, End: baseEnd}}, nil
	}

	out := make([]Interval, len(starts))
	for i, s := range starts {
		out[i] = Interval{Start: s, End: s.Add(duration)}
	}
	return out, nil
}

func expandWeekly(baseStart time.Time, rule Rule, until time.Time) []time.Time {
	days := rule.DaysOfWeek
	if len(days) == 0 {
		days = []time.Weekday{baseStart.Weekday()}
	}
	days = normalizeWeekdays(days)

	// Week anchor: the Sunday on or before the base start. Stepping
	// moves the anchor by whole weeks; selected weekdays are offsets
	// within each stepped week. Once the anchor passes the bound no
	// day in that week can qualify, so iteration stops there.
	baseDate := dateOf(baseStart)

	var starts []time.Time
	for anchor := baseDate.AddDate(0, 0, -int(baseStart.Weekday())); !anchor.After(until); anchor = anchor.AddDate(0, 0, 7*rule.Interval) {
		for _, wd := range days {
			day := anchor.AddDate(0, 0, int(wd))
			if day.Before(baseDate) || day.After(until) {
				continue
			}
			starts = append(starts, withTimeOfDay(day, baseStart))
		}
	}
	return starts
}

func expandMonthly(baseStart time.Time, rule Rule, until time.Time) []time.Time {
	day := rule.DayOfMonth
	if day == 0 {
		day = baseStart.Day()
	}
	baseDate := dateOf(baseStart)

	var starts []time.Time
	year, month := baseStart.Year(), baseStart.Month()
	for {
		candidate := anchoredDayInMonth(year, month, day, baseStart.Location())
		if candidate.After(until) {
			break
		}
		if !candidate.Before(baseDate) {
			starts = append(starts, withTimeOfDay(candidate, baseStart))
		}
		month += time.Month(rule.Interval)
		for month > 12 {
			month -= 12
			year++
		}
	}
	return starts
}

// anchoredDayInMonth clamps day to the last valid day of the month
// (Feb 30 becomes Feb 28/29).
func anchoredDayInMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func withTimeOfDay(day time.Time, base time.Time) time.Time {
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		base.Hour(), base.Minute(), base.Second(), base.Nanosecond(),
		base.Location(),
	)
}

func normalizeWeekdays(days []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
