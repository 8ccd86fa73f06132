package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"today-i-need/internal/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDateKey(s)
	require.NoError(t, err)
	return d
}

func newTask(t *testing.T, start string, repeat model.RepeatValue) model.Task {
	t.Helper()
	return model.Task{
		ID:          "3f2b7c1e-9a4d-4e21-8c55-0d1e2f3a4b5c",
		Title:       "Water plants",
		Category:    "Home",
		StartDate:   day(t, start),
		RepeatValue: repeat,
		IsActive:    true,
	}
}

func withEnd(t *testing.T, task model.Task, end string) model.Task {
	t.Helper()
	e := day(t, end)
	task.EndDate = &e
	return task
}

func completeOn(t *testing.T, task model.Task, dates ...string) model.Task {
	t.Helper()
	for _, s := range dates {
		task = MarkDone(task, day(t, s), day(t, s).Add(20*time.Hour), "You")
	}
	return task
}

func keys(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, DateKey(d))
	}
	return out
}
