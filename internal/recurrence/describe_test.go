package recurrence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"today-i-need/internal/model"
)

func TestDescribeRule(t *testing.T) {
	cases := map[string]string{
		"FREQ=DAILY":                            "every day",
		"RRULE:FREQ=DAILY;INTERVAL=3":           "every 3 days",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR":    "every 2 weeks on Monday and Friday",
		"FREQ=WEEKLY;BYDAY=MO,WE,FR":            "every week on Monday, Wednesday and Friday",
		"FREQ=MONTHLY;BYDAY=2TU":                "every month on the 2nd Tuesday",
		"FREQ=MONTHLY;BYDAY=FR;BYSETPOS=-1":     "every month on the last Friday",
		"FREQ=MONTHLY;BYMONTHDAY=1,15":          "every month on the 1st and the 15th",
		"FREQ=YEARLY;BYMONTH=3;BYMONTHDAY=21":   "every year in March on the 21st",
		"freq=weekly;count=4":                   "every week for 4 times",
		"FREQ=DAILY;UNTIL=20241231T000000Z":     "every day until December 31, 2024",
		"DTSTART:20200101T000000Z\nFREQ=DAILY":  "every day",
		"FREQ=MONTHLY;INTERVAL=2;BYMONTHDAY=13": "every 2 months on the 13th",
	}
	for rule, want := range cases {
		got, err := DescribeRule(rule)
		require.NoError(t, err, rule)
		require.Equal(t, want, got, rule)
	}

	_, err := DescribeRule("GARBAGE")
	require.Error(t, err)
	_, err = DescribeRule("")
	require.ErrorIs(t, err, ErrEmptyRule)
}

func TestRuleText(t *testing.T) {
	task := newTask(t, "2024-06-03", model.RepeatCustom)
	require.Equal(t, "custom (needs configuration)", RuleText(task))

	task.CustomRrule = "FREQ=MONTHLY;BYDAY=2TU"
	require.Equal(t, "every month on the 2nd Tuesday", RuleText(task))

	task.CustomRrule = "FREQ=WEEKLY;BYDAY=SU"
	require.Equal(t, "every week on Sunday", RuleText(task))

	task.CustomRrule = "  not a rule "
	require.Equal(t, "not a rule", RuleText(task))

	task.RepeatValue = model.RepeatWeekly
	require.Equal(t, "every week on Monday", RuleText(task))
	task.RepeatValue = model.RepeatMonthly
	require.Equal(t, "every month on the 3rd", RuleText(task))
	task.RepeatValue = model.RepeatYearly
	require.Equal(t, "every year on June 3", RuleText(task))
}

func TestRepairRule(t *testing.T) {
	fixed, ok := RepairRule(" FREQ=WEEKLY;BYDAY=MO ")
	require.True(t, ok)
	require.Equal(t, "RRULE:FREQ=WEEKLY;BYDAY=MO", fixed)

	fixed, ok = RepairRule("rrule:freq=daily")
	require.True(t, ok)
	require.Equal(t, "RRULE:FREQ=DAILY", fixed)

	fixed, ok = RepairRule(" nope ")
	require.False(t, ok)
	require.Equal(t, "nope", fixed)
}

func TestOrdinal(t *testing.T) {
	for n, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 31: "31st", -1: "last", -2: "2nd to last"} {
		require.Equal(t, want, ordinal(n))
	}
}
