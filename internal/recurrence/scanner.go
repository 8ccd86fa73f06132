package recurrence

import (
	"time"

	"today-i-need/internal/model"
)

// MaxLookaheadDays bounds how far NextDueDate searches past today.
const MaxLookaheadDays = 365

// NextDueDate finds the earliest uncompleted occurrence strictly after today,
// looking at most MaxLookaheadDays ahead and never past the end date.
func NextDueDate(task model.Task, today time.Time) (time.Time, bool) {
	return nextDueDate(Compile(task), task, Day(today))
}

// MostRecentOverdueDate finds the latest uncompleted occurrence in
// [StartDate, today-1].
func MostRecentOverdueDate(task model.Task, today time.Time) (time.Time, bool) {
	return mostRecentOverdue(Compile(task), task, Day(today))
}

func nextDueDate(s *Schedule, task model.Task, today time.Time) (time.Time, bool) {
	done := completionIndex(task.CompletedDates)
	for _, d := range s.Occurrences(addDays(today, 1), addDays(today, MaxLookaheadDays)) {
		if _, ok := done[DateKey(d)]; !ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func mostRecentOverdue(s *Schedule, task model.Task, today time.Time) (time.Time, bool) {
	done := completionIndex(task.CompletedDates)
	days := s.Occurrences(s.start, addDays(today, -1))
	for i := len(days) - 1; i >= 0; i-- {
		if _, ok := done[DateKey(days[i])]; !ok {
			return days[i], true
		}
	}
	return time.Time{}, false
}
