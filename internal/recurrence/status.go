package recurrence

import (
	"sort"
	"strings"
	"time"

	"today-i-need/internal/model"
)

const (
	LabelOverdue    = "Overdue"
	LabelNextDue    = "Next due"
	LabelNoUpcoming = "No upcoming due dates"
)

// Status summarises where a task stands relative to today.
type Status struct {
	IsOverdue   bool
	IsDueToday  bool
	IsCompleted bool
	// NextDueDate is today when today's occurrence is still open, otherwise
	// the next uncompleted occurrence. Zero when there is none.
	NextDueDate time.Time
	OverdueDate time.Time
	Label       string
}

func StatusOf(task model.Task, today time.Time) Status {
	today = Day(today)
	s := Compile(task)

	var st Status
	st.IsDueToday = s.IsDue(today)
	st.IsCompleted = IsCompleted(task, today)
	if d, ok := mostRecentOverdue(s, task, today); ok {
		st.IsOverdue = true
		st.OverdueDate = d
	}

	if st.IsDueToday && !st.IsCompleted {
		st.NextDueDate = today
	} else if d, ok := nextDueDate(s, task, today); ok {
		st.NextDueDate = d
	}

	switch {
	case st.IsOverdue:
		st.Label = LabelOverdue
	case !st.NextDueDate.IsZero():
		st.Label = LabelNextDue
	default:
		st.Label = LabelNoUpcoming
	}
	return st
}

// SortByPriority orders tasks in place: tasks with an overdue occurrence
// first, then tasks due today, then by title.
func SortByPriority(tasks []model.Task, today time.Time) {
	type ranked struct {
		task   model.Task
		status Status
	}
	items := make([]ranked, len(tasks))
	for i, t := range tasks {
		items[i] = ranked{task: t, status: StatusOf(t, today)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].status, items[j].status
		if a.IsOverdue != b.IsOverdue {
			return a.IsOverdue
		}
		if a.IsDueToday != b.IsDueToday {
			return a.IsDueToday
		}
		return strings.ToLower(items[i].task.Title) < strings.ToLower(items[j].task.Title)
	})

	for i := range items {
		tasks[i] = items[i].task
	}
}
