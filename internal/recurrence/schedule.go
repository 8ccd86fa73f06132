package recurrence

import (
	"time"

	"today-i-need/internal/model"
)

// Schedule is a task compiled for repeated due-date checks: the custom rule,
// if any, is parsed once up front.
type Schedule struct {
	start   time.Time
	end     time.Time
	hasEnd  bool
	active  bool
	repeat  model.RepeatValue
	rule    *Rule
	ruleErr error
}

// Compile prepares task for due checks, parsing its custom rule once.
func Compile(task model.Task) *Schedule {
	s := &Schedule{
		start:  Day(task.StartDate),
		active: task.IsActive,
		repeat: task.RepeatValue,
	}
	if task.EndDate != nil {
		s.end = Day(*task.EndDate)
		s.hasEnd = true
	}
	if s.repeat == model.RepeatCustom {
		s.rule, s.ruleErr = ParseRule(task.CustomRrule, s.start)
	}
	return s
}

// IsDue reports whether task has an occurrence on date.
func IsDue(task model.Task, date time.Time) bool {
	return Compile(task).IsDue(date)
}

// RuleErr explains why a custom task fell back to daily repetition.
// It is nil for valid rules and for non-custom tasks.
func (s *Schedule) RuleErr() error {
	return s.ruleErr
}

// IsDue reports whether the compiled task has an occurrence on date.
func (s *Schedule) IsDue(date time.Time) bool {
	d := Day(date)
	if !s.active || !s.inWindow(d) {
		return false
	}

	switch s.repeat {
	case model.RepeatDaily:
		return true
	case model.RepeatWeekly:
		return daysBetween(s.start, d)%7 == 0
	case model.RepeatMonthly:
		// Literal day-of-month match: a task started on the 31st skips
		// months that have no 31st.
		return d.Day() == s.start.Day()
	case model.RepeatYearly:
		return d.Month() == s.start.Month() && d.Day() == s.start.Day()
	case model.RepeatCustom:
		if s.rule == nil {
			return true
		}
		return s.rule.OccursOn(d)
	default:
		return false
	}
}

// Occurrences lists the due dates within [from, to], both inclusive,
// clipped to the task's active window.
func (s *Schedule) Occurrences(from, to time.Time) []time.Time {
	if !s.active {
		return nil
	}
	from, to = Day(from), Day(to)
	if from.Before(s.start) {
		from = s.start
	}
	if s.hasEnd && to.After(s.end) {
		to = s.end
	}
	if to.Before(from) {
		return nil
	}

	if s.repeat == model.RepeatCustom && s.rule != nil {
		return s.rule.Between(from, to)
	}

	var days []time.Time
	for d := from; !d.After(to); d = addDays(d, 1) {
		if s.IsDue(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s *Schedule) inWindow(d time.Time) bool {
	if d.Before(s.start) {
		return false
	}
	if s.hasEnd && d.After(s.end) {
		return false
	}
	return true
}
