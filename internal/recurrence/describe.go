package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"today-i-need/internal/model"
)

const ruleNeedsConfiguration = "custom (needs configuration)"

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DescribeRule renders a recurrence rule as English text, for example
// "every 2 weeks on Monday and Friday".
func DescribeRule(text string) (string, error) {
	rule, err := ParseRule(text, repairAnchor)
	if err != nil {
		return "", err
	}
	return describe(rule.rr.OrigOptions), nil
}

// RuleText is the human-readable repetition of a task. It is derived on
// every call so it can never drift from CustomRrule.
func RuleText(task model.Task) string {
	switch task.RepeatValue {
	case model.RepeatDaily:
		return "every day"
	case model.RepeatWeekly:
		return "every week on " + weekdayNames[weekdayIndex(task.StartDate.Weekday())]
	case model.RepeatMonthly:
		return "every month on the " + ordinal(task.StartDate.Day())
	case model.RepeatYearly:
		return "every year on " + task.StartDate.Format("January 2")
	case model.RepeatCustom:
		if strings.TrimSpace(task.CustomRrule) == "" {
			return ruleNeedsConfiguration
		}
		text, err := DescribeRule(task.CustomRrule)
		if err != nil {
			return strings.TrimSpace(task.CustomRrule)
		}
		return text
	default:
		return string(task.RepeatValue)
	}
}

func describe(opt rrule.ROption) string {
	var b strings.Builder

	interval := opt.Interval
	if interval < 1 {
		interval = 1
	}
	unit := map[rrule.Frequency]string{
		rrule.YEARLY:  "year",
		rrule.MONTHLY: "month",
		rrule.WEEKLY:  "week",
		rrule.DAILY:   "day",
	}[opt.Freq]
	if interval == 1 {
		b.WriteString("every " + unit)
	} else {
		b.WriteString(fmt.Sprintf("every %d %ss", interval, unit))
	}

	if len(opt.Bymonth) > 0 {
		months := make([]string, 0, len(opt.Bymonth))
		for _, m := range opt.Bymonth {
			if m >= 1 && m <= 12 {
				months = append(months, time.Month(m).String())
			}
		}
		if len(months) > 0 {
			b.WriteString(" in " + joinList(months))
		}
	}

	switch {
	case len(opt.Byweekday) > 0:
		days := make([]string, 0, len(opt.Byweekday))
		for i := range opt.Byweekday {
			wd := &opt.Byweekday[i]
			name := weekdayNames[wd.Day()%7]
			n := wd.N()
			if n == 0 && len(opt.Bysetpos) == 1 {
				n = opt.Bysetpos[0]
			}
			if n != 0 {
				name = "the " + ordinal(n) + " " + name
			}
			days = append(days, name)
		}
		b.WriteString(" on " + joinList(days))
	case len(opt.Bymonthday) > 0:
		days := make([]string, 0, len(opt.Bymonthday))
		for _, d := range opt.Bymonthday {
			days = append(days, "the "+ordinal(d))
		}
		b.WriteString(" on " + joinList(days))
	}

	switch {
	case opt.Count > 0:
		if opt.Count == 1 {
			b.WriteString(" for 1 time")
		} else {
			b.WriteString(fmt.Sprintf(" for %d times", opt.Count))
		}
	case !opt.Until.IsZero():
		b.WriteString(" until " + opt.Until.Format("January 2, 2006"))
	}

	return b.String()
}

func ordinal(n int) string {
	switch {
	case n == -1:
		return "last"
	case n < -1:
		return ordinal(-n) + " to last"
	}
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// weekdayIndex maps time.Weekday onto a Monday-first index.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
