package recurrence

import (
	"time"

	"today-i-need/internal/model"
)

type DayStatus string

const (
	DayNone      DayStatus = "none"
	DayCompleted DayStatus = "completed"
	DayMissed    DayStatus = "missed"
	DayDueToday  DayStatus = "due-today"
	DayDueFuture DayStatus = "due-future"
)

// CalendarWeeks is the number of rows in a month grid.
const CalendarWeeks = 6

type CalendarDay struct {
	Date    time.Time
	InMonth bool
	Status  DayStatus
}

// MonthCalendar lays out the month containing month as a 6x7 grid starting
// on the Sunday on or before the 1st, with the task's status on each day.
func MonthCalendar(task model.Task, month, today time.Time) []CalendarDay {
	today = Day(today)
	y, m, _ := month.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	cursor := addDays(first, -int(first.Weekday()))

	last := addDays(cursor, CalendarWeeks*7-1)
	due := make(map[string]struct{})
	for _, d := range Compile(task).Occurrences(cursor, last) {
		due[DateKey(d)] = struct{}{}
	}
	done := completionIndex(task.CompletedDates)

	days := make([]CalendarDay, 0, CalendarWeeks*7)
	for i := 0; i < CalendarWeeks*7; i++ {
		day := CalendarDay{Date: cursor, InMonth: cursor.Month() == m, Status: DayNone}
		key := DateKey(cursor)
		if _, ok := due[key]; ok {
			_, completed := done[key]
			switch {
			case completed:
				day.Status = DayCompleted
			case cursor.Equal(today):
				day.Status = DayDueToday
			case cursor.Before(today):
				day.Status = DayMissed
			default:
				day.Status = DayDueFuture
			}
		}
		days = append(days, day)
		cursor = addDays(cursor, 1)
	}
	return days
}
