package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"today-i-need/internal/model"
)

func TestIsDueBounds(t *testing.T) {
	for _, repeat := range model.RepeatValues {
		task := withEnd(t, newTask(t, "2024-03-10", repeat), "2024-06-30")
		task.CustomRrule = "FREQ=DAILY"

		require.False(t, IsDue(task, day(t, "2024-03-09")), repeat)
		require.False(t, IsDue(task, day(t, "2024-07-01")), repeat)
		require.False(t, IsDue(task, day(t, "2023-03-10")), repeat)
		require.True(t, IsDue(task, day(t, "2024-03-10")), repeat)
	}
}

func TestIsDueIgnoresTimeOfDay(t *testing.T) {
	task := newTask(t, "2024-06-01", model.RepeatWeekly)
	evening := time.Date(2024, time.June, 8, 23, 59, 0, 0, time.UTC)
	require.True(t, IsDue(task, evening))
}

func TestIsDueInactiveTask(t *testing.T) {
	task := newTask(t, "2024-06-01", model.RepeatDaily)
	task.IsActive = false
	require.False(t, IsDue(task, day(t, "2024-06-01")))
	require.Empty(t, Compile(task).Occurrences(day(t, "2024-06-01"), day(t, "2024-06-30")))
}

func TestDailyDueEveryDay(t *testing.T) {
	task := newTask(t, "2024-02-27", model.RepeatDaily)
	for d := day(t, "2024-02-27"); d.Before(day(t, "2025-03-01")); d = addDays(d, 1) {
		require.True(t, IsDue(task, d), DateKey(d))
	}
}

func TestWeeklyPeriodicity(t *testing.T) {
	task := newTask(t, "2024-06-01", model.RepeatWeekly)
	start := day(t, "2024-06-01")

	for k := 0; k < 60; k++ {
		occurrence := addDays(start, 7*k)
		require.True(t, IsDue(task, occurrence), DateKey(occurrence))
		for gap := 1; gap < 7; gap++ {
			require.False(t, IsDue(task, addDays(occurrence, gap)))
		}
	}
}

func TestWeeklyCadence(t *testing.T) {
	task := newTask(t, "2024-06-01", model.RepeatWeekly)
	require.True(t, IsDue(task, day(t, "2024-06-15")))
	require.False(t, IsDue(task, day(t, "2024-06-10")))
}

func TestMonthlyLiteralDayOfMonth(t *testing.T) {
	task := newTask(t, "2024-01-31", model.RepeatMonthly)

	require.False(t, IsDue(task, day(t, "2024-02-28")))
	require.False(t, IsDue(task, day(t, "2024-02-29")))
	require.True(t, IsDue(task, day(t, "2024-03-31")))
	require.False(t, IsDue(task, day(t, "2024-04-30")))

	got := Compile(task).Occurrences(day(t, "2024-01-01"), day(t, "2024-08-31"))
	require.Equal(t, []string{"2024-01-31", "2024-03-31", "2024-05-31", "2024-07-31", "2024-08-31"}, keys(got))
}

func TestYearly(t *testing.T) {
	task := newTask(t, "2024-02-29", model.RepeatYearly)
	require.True(t, IsDue(task, day(t, "2024-02-29")))
	require.False(t, IsDue(task, day(t, "2025-02-28")))
	require.False(t, IsDue(task, day(t, "2025-03-01")))
	require.True(t, IsDue(task, day(t, "2028-02-29")))

	birthday := newTask(t, "2020-09-14", model.RepeatYearly)
	require.True(t, IsDue(birthday, day(t, "2026-09-14")))
	require.False(t, IsDue(birthday, day(t, "2026-10-14")))
}

func TestCustomSecondTuesday(t *testing.T) {
	task := newTask(t, "2024-01-01", model.RepeatCustom)
	task.CustomRrule = "FREQ=MONTHLY;BYDAY=2TU"

	require.NoError(t, Compile(task).RuleErr())
	require.True(t, IsDue(task, day(t, "2024-01-09")))
	require.False(t, IsDue(task, day(t, "2024-01-02")))
	require.False(t, IsDue(task, day(t, "2024-01-01")))
	require.True(t, IsDue(task, day(t, "2024-02-13")))

	got := Compile(task).Occurrences(day(t, "2024-01-01"), day(t, "2024-04-30"))
	require.Equal(t, []string{"2024-01-09", "2024-02-13", "2024-03-12", "2024-04-09"}, keys(got))
}

func TestCustomRuleWithPrefixAndInterval(t *testing.T) {
	task := newTask(t, "2024-06-03", model.RepeatCustom)
	task.CustomRrule = "RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR"

	got := Compile(task).Occurrences(day(t, "2024-06-01"), day(t, "2024-06-30"))
	require.Equal(t, []string{"2024-06-03", "2024-06-07", "2024-06-17", "2024-06-21"}, keys(got))
}

func TestCustomRuleCountLimitsOccurrences(t *testing.T) {
	task := newTask(t, "2024-06-01", model.RepeatCustom)
	task.CustomRrule = "FREQ=DAILY;COUNT=3"

	require.True(t, IsDue(task, day(t, "2024-06-03")))
	require.False(t, IsDue(task, day(t, "2024-06-04")))
}

func TestCustomFallbackToDaily(t *testing.T) {
	for _, rule := range []string{"GARBAGE", "", "   ", "FREQ=SOMETIMES"} {
		task := newTask(t, "2024-05-01", model.RepeatCustom)
		task.CustomRrule = rule

		s := Compile(task)
		require.Error(t, s.RuleErr(), rule)
		require.False(t, s.IsDue(day(t, "2024-04-30")), rule)
		for d := day(t, "2024-05-01"); d.Before(day(t, "2024-07-01")); d = addDays(d, 1) {
			require.True(t, s.IsDue(d), "%q on %s", rule, DateKey(d))
		}
	}
}

func TestUnknownRepeatValueNeverDue(t *testing.T) {
	task := newTask(t, "2024-05-01", model.RepeatValue("fortnightly"))
	require.False(t, IsDue(task, day(t, "2024-05-01")))
}

func TestIsDueDeterministic(t *testing.T) {
	task := newTask(t, "2024-01-01", model.RepeatCustom)
	task.CustomRrule = "FREQ=MONTHLY;BYMONTHDAY=-1"
	for i := 0; i < 3; i++ {
		require.True(t, IsDue(task, day(t, "2024-02-29")))
		require.False(t, IsDue(task, day(t, "2024-02-28")))
	}
}

func TestSubDailyRulesFallBackToDaily(t *testing.T) {
	for _, rule := range []string{"FREQ=HOURLY", "FREQ=MINUTELY;INTERVAL=5", "FREQ=SECONDLY"} {
		_, err := ParseRule(rule, day(t, "2025-01-01"))
		require.ErrorIs(t, err, ErrSubDailyRule, rule)
		_, ok := RepairRule(rule)
		require.False(t, ok, rule)

		task := newTask(t, "2025-01-01", model.RepeatCustom)
		task.CustomRrule = rule
		require.ErrorIs(t, Compile(task).RuleErr(), ErrSubDailyRule, rule)

		today := day(t, "2025-03-10")
		started := time.Now()
		grid := MonthCalendar(task, today, today)
		p := Classify([]model.Task{task}, today)
		st := StatusOf(task, today)
		require.Less(t, time.Since(started), time.Second, rule)

		for _, cell := range grid {
			if cell.InMonth && !cell.Date.After(today) {
				require.NotEqual(t, DayNone, cell.Status, DateKey(cell.Date))
			}
		}
		require.Len(t, p.Active, 1, rule)
		require.Len(t, p.Overdue, 68, rule)
		require.True(t, st.IsDueToday, rule)
	}
}
