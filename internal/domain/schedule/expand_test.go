//go:build unit

package schedule_test

import (
	"testing"
	"time"

	"stewardflow/internal/domain/schedule"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func starts(intervals []schedule.Interval) []time.Time {
	out := make([]time.Time, len(intervals))
	for i, iv := range intervals {
		out[i] = iv.Start
	}
	return out
}

func TestExpand(t *testing.T) {
	t.Run("no recurrence yields the base interval alone", func(t *testing.T) {
		base := mustTime(t, "2025-02-03T09:00:00Z")
		end := mustTime(t, "2025-02-03T11:00:00Z")

		got, err := schedule.Expand(base, end, schedule.Rule{Frequency: schedule.FrequencyNone})
		require.NoError(t, err)

		want := []schedule.Interval{{Start: base, End: end}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("intervals mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("weekly on Monday and Wednesday through an inclusive bound", func(t *testing.T) {
		// Base Monday 2025-02-03; the bound lands exactly on the third
		// Monday, which must still be emitted.
		base := mustTime(t, "2025-02-03T09:00:00Z")
		end := mustTime(t, "2025-02-03T11:00:00Z")
		rule := schedule.Rule{
			Frequency:  schedule.FrequencyWeekly,
			Interval:   1,
			Until:      mustTime(t, "2025-02-17T00:00:00Z"),
			DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
		}

		got, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		want := []time.Time{
			mustTime(t, "2025-02-03T09:00:00Z"),
			mustTime(t, "2025-02-05T09:00:00Z"),
			mustTime(t, "2025-02-10T09:00:00Z"),
			mustTime(t, "2025-02-12T09:00:00Z"),
			mustTime(t, "2025-02-17T09:00:00Z"),
		}
		if diff := cmp.Diff(want, starts(got)); diff != "" {
			t.Errorf("starts mismatch (-want +got):\n%s", diff)
		}
		for _, iv := range got {
			assert.Equal(t, 2*time.Hour, iv.End.Sub(iv.Start))
		}
	})

	t.Run("weekly with empty weekday set defaults to the base weekday", func(t *testing.T) {
		base := mustTime(t, "2025-02-03T09:00:00Z")
		end := mustTime(t, "2025-02-03T10:00:00Z")
		rule := schedule.Rule{
			Frequency: schedule.FrequencyWeekly,
			Interval:  1,
			Until:     mustTime(t, "2025-02-16T00:00:00Z"),
		}

		got, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		want := []time.Time{
			mustTime(t, "2025-02-03T09:00:00Z"),
			mustTime(t, "2025-02-10T09:00:00Z"),
		}
		if diff := cmp.Diff(want, starts(got)); diff != "" {
			t.Errorf("starts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("weekly interval skips whole weeks", func(t *testing.T) {
		base := mustTime(t, "2025-02-03T09:00:00Z")
		end := mustTime(t, "2025-02-03T10:00:00Z")
		rule := schedule.Rule{
			Frequency: schedule.FrequencyWeekly,
			Interval:  2,
			Until:     mustTime(t, "2025-03-03T00:00:00Z"),
		}

		got, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		want := []time.Time{
			mustTime(t, "2025-02-03T09:00:00Z"),
			mustTime(t, "2025-02-17T09:00:00Z"),
			mustTime(t, "2025-03-03T09:00:00Z"),
		}
		if diff := cmp.Diff(want, starts(got)); diff != "" {
			t.Errorf("starts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("selected weekdays before the base date are not emitted", func(t *testing.T) {
		// Sunday of the base week precedes the Monday base start and no
		// later Sunday fits under the bound; the base interval is the
		// fallback so the request still books something.
		base := mustTime(t, "2025-02-03T09:00:00Z")
		end := mustTime(t, "2025-02-03T10:00:00Z")
		rule := schedule.Rule{
			Frequency:  schedule.FrequencyWeekly,
			Interval:   1,
			Until:      mustTime(t, "2025-02-08T00:00:00Z"),
			DaysOfWeek: []time.Weekday{time.Sunday},
		}

		got, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		want := []schedule.Interval{{Start: base, End: end}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("intervals mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("monthly clamps the anchored day to short months", func(t *testing.T) {
		base := mustTime(t, "2025-01-31T10:00:00Z")
		end := mustTime(t, "2025-01-31T12:00:00Z")
		rule := schedule.Rule{
			Frequency: schedule.FrequencyMonthly,
			Interval:  1,
			Until:     mustTime(t, "2025-04-30T00:00:00Z"),
		}

		got, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		want := []time.Time{
			mustTime(t, "2025-01-31T10:00:00Z"),
			mustTime(t, "2025-02-28T10:00:00Z"),
			mustTime(t, "2025-03-31T10:00:00Z"),
			mustTime(t, "2025-04-30T10:00:00Z"),
		}
		if diff := cmp.Diff(want, starts(got)); diff != "" {
			t.Errorf("starts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("monthly with explicit day before the base start skips the base month", func(t *testing.T) {
		base := mustTime(t, "2025-01-15T10:00:00Z")
		end := mustTime(t, "2025-01-15T11:00:00Z")
		rule := schedule.Rule{
			Frequency:  schedule.FrequencyMonthly,
			Interval:   1,
			Until:      mustTime(t, "2025-03-31T00:00:00Z"),
			DayOfMonth: 10,
		}

		got, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		want := []time.Time{
			mustTime(t, "2025-02-10T10:00:00Z"),
			mustTime(t, "2025-03-10T10:00:00Z"),
		}
		if diff := cmp.Diff(want, starts(got)); diff != "" {
			t.Errorf("starts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("monthly interval crosses year boundaries", func(t *testing.T) {
		base := mustTime(t, "2025-11-20T09:00:00Z")
		end := mustTime(t, "2025-11-20T10:00:00Z")
		rule := schedule.Rule{
			Frequency: schedule.FrequencyMonthly,
			Interval:  2,
			Until:     mustTime(t, "2026-03-20T00:00:00Z"),
		}

		got, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		want := []time.Time{
			mustTime(t, "2025-11-20T09:00:00Z"),
			mustTime(t, "2026-01-20T09:00:00Z"),
			mustTime(t, "2026-03-20T09:00:00Z"),
		}
		if diff := cmp.Diff(want, starts(got)); diff != "" {
			t.Errorf("starts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("expansion is deterministic", func(t *testing.T) {
		base := mustTime(t, "2025-02-03T09:00:00Z")
		end := mustTime(t, "2025-02-03T11:00:00Z")
		rule := schedule.Rule{
			Frequency:  schedule.FrequencyWeekly,
			Interval:   1,
			Until:      mustTime(t, "2025-03-31T00:00:00Z"),
			DaysOfWeek: []time.Weekday{time.Wednesday, time.Monday, time.Monday},
		}

		first, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)
		second, err := schedule.Expand(base, end, rule)
		require.NoError(t, err)

		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("repeated expansion differs (-first +second):\n%s", diff)
		}
	})
}

func TestRuleValidate(t *testing.T) {
	base := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		rule  schedule.Rule
		errIs error
	}{
		{
			name: "valid weekly rule",
			rule: schedule.Rule{
				Frequency: schedule.FrequencyWeekly,
				Interval:  1,
				Until:     base.AddDate(0, 1, 0),
			},
		},
		{
			name:  "none needs nothing else",
			rule:  schedule.Rule{Frequency: schedule.FrequencyNone},
			errIs: nil,
		},
		{
			name: "zero interval rejected",
			rule: schedule.Rule{
				Frequency: schedule.FrequencyWeekly,
				Until:     base.AddDate(0, 1, 0),
			},
			errIs: schedule.ErrInvalidInterval,
		},
		{
			name: "missing end date rejected",
			rule: schedule.Rule{
				Frequency: schedule.FrequencyWeekly,
				Interval:  1,
			},
			errIs: schedule.ErrMissingEndDate,
		},
		{
			name: "end date before base rejected",
			rule: schedule.Rule{
				Frequency: schedule.FrequencyWeekly,
				Interval:  1,
				Until:     base.AddDate(0, 0, -1),
			},
			errIs: schedule.ErrEndBeforeStart,
		},
		{
			name: "end date equal to base date allowed",
			rule: schedule.Rule{
				Frequency: schedule.FrequencyWeekly,
				Interval:  1,
				Until:     time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "unknown frequency rejected",
			rule:  schedule.Rule{Frequency: "daily"},
			errIs: schedule.ErrUnknownFrequency,
		},
		{
			name: "day of month above 31 rejected",
			rule: schedule.Rule{
				Frequency:  schedule.FrequencyMonthly,
				Interval:   1,
				Until:      base.AddDate(0, 2, 0),
				DayOfMonth: 32,
			},
			errIs: schedule.ErrInvalidDayOfMonth,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate(base)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			assert.NoError(t, err)
		})
	}
}
