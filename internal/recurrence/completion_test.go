package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"today-i-need/internal/model"
)

func TestMarkDoneIdempotent(t *testing.T) {
	task := newTask(t, "2024-06-01", model.RepeatDaily)
	date := day(t, "2024-06-05")
	first := date.Add(9 * time.Hour)
	second := date.Add(18 * time.Hour)

	task = MarkDone(task, date, first, "Ann")
	task = MarkDone(task, date, second, "Bob")

	require.Len(t, task.CompletedDates, 1)
	c, ok := CompletionOn(task, date)
	require.True(t, ok)
	require.Equal(t, second, c.CompletedAt)
	require.Equal(t, "Bob", c.CompletedBy)
	require.Equal(t, task.ID, c.TaskID)
}

func TestMarkDoneCollapsesDuplicates(t *testing.T) {
	task := newTask(t, "2024-06-01", model.RepeatDaily)
	task.CompletedDates = []model.Completion{
		{TaskID: task.ID, Date: "2024-06-05", CompletedAt: day(t, "2024-06-05")},
		{TaskID: task.ID, Date: "2024-06-04", CompletedAt: day(t, "2024-06-04")},
		{TaskID: task.ID, Date: "2024-06-05", CompletedAt: day(t, "2024-06-06")},
	}

	latest, ok := CompletionOn(task, day(t, "2024-06-05"))
	require.True(t, ok)
	require.Equal(t, day(t, "2024-06-06"), latest.CompletedAt)

	task = MarkDone(task, day(t, "2024-06-05"), day(t, "2024-06-07"), "You")
	require.Len(t, task.CompletedDates, 2)
}

func TestUndoRestoresOpenOccurrence(t *testing.T) {
	original := newTask(t, "2024-06-01", model.RepeatWeekly)
	date := day(t, "2024-06-08")
	require.True(t, IsDue(original, date))
	require.False(t, IsCompleted(original, date))

	done := MarkDone(original, date, date.Add(time.Hour), "You")
	require.True(t, IsCompleted(done, date))
	require.Empty(t, original.CompletedDates)

	undone := Undo(done, date)
	require.True(t, IsDue(undone, date))
	require.False(t, IsCompleted(undone, date))
	require.Empty(t, undone.CompletedDates)
	require.True(t, IsCompleted(done, date))
}
