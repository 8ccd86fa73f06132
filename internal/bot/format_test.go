package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"today-i-need/internal/model"
	"today-i-need/internal/recurrence"
	"today-i-need/internal/service"
)

const taskID = "3f2b7c1e-9a4d-4e21-8c55-0d1e2f3a4b5c"

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := recurrence.ParseDateKey(s)
	require.NoError(t, err)
	return d
}

func dailyTask(t *testing.T, start string) model.Task {
	t.Helper()
	return model.Task{
		ID:          taskID,
		Title:       "water <plants>",
		Category:    "Home",
		StartDate:   day(t, start),
		RepeatValue: model.RepeatDaily,
		IsActive:    true,
	}
}

func TestRenderToday(t *testing.T) {
	today := day(t, "2024-06-10")
	task := dailyTask(t, "2024-05-29")

	p := recurrence.Partition{
		Active: []recurrence.Instance{{
			Key:     recurrence.OccurrenceKey{TaskID: task.ID, Date: today, Kind: recurrence.KindReal},
			Task:    task,
			DueDate: today,
		}},
	}
	for i := 1; i <= 12; i++ {
		d := today.AddDate(0, 0, -i)
		p.Overdue = append(p.Overdue, recurrence.Instance{
			Key:     recurrence.OccurrenceKey{TaskID: task.ID, Date: d, Kind: recurrence.KindOverdue},
			Task:    task,
			DueDate: d,
		})
	}

	v := renderToday(p, today, time.UTC, 3)
	require.Contains(t, v.text, "Monday, Jun 10")
	require.Contains(t, v.text, "Water &lt;plants&gt;")
	require.Contains(t, v.text, "<b>To do</b> (1)")
	require.Contains(t, v.text, "<b>Overdue</b> (12)")
	require.Contains(t, v.text, "Yesterday")
	require.Contains(t, v.text, "…and 2 more")
	require.Contains(t, v.text, "3 overdue hidden")

	require.Len(t, v.rows, 1+maxOverdueShown+1)
	require.Equal(t, cbDonePrefix+taskID+"-2024-06-10", *v.rows[0][0].CallbackData)
	require.Equal(t, cbDonePrefix+taskID+"-2024-06-09", *v.rows[1][0].CallbackData)
	require.Equal(t, cbHidePrefix+taskID+"-2024-06-09", *v.rows[1][1].CallbackData)
	require.Equal(t, cbUnhide, *v.rows[len(v.rows)-1][0].CallbackData)

	for _, row := range v.rows {
		for _, btn := range row {
			require.LessOrEqual(t, len(*btn.CallbackData), 64)
		}
	}
}

func TestRenderTodayDone(t *testing.T) {
	today := day(t, "2024-06-10")
	task := dailyTask(t, "2024-06-10")
	at := time.Date(2024, time.June, 10, 8, 15, 0, 0, time.UTC)

	p := recurrence.Partition{
		Done: []recurrence.Instance{{
			Key:         recurrence.OccurrenceKey{TaskID: task.ID, Date: today, Kind: recurrence.KindReal},
			Task:        task,
			DueDate:     today,
			CompletedAt: &at,
			CompletedBy: "Ada",
		}},
	}

	v := renderToday(p, today, time.UTC, 0)
	require.Contains(t, v.text, "— all clear")
	require.Contains(t, v.text, "Jun 10 08:15 by Ada")
	require.Len(t, v.rows, 1)
	require.Equal(t, cbUndoPrefix+taskID+"-2024-06-10", *v.rows[0][0].CallbackData)
}

func TestRenderCalendarGrid(t *testing.T) {
	task := dailyTask(t, "2024-06-01")
	task = recurrence.MarkDone(task, day(t, "2024-06-03"), day(t, "2024-06-03"), "You")
	cells := recurrence.MonthCalendar(task, day(t, "2024-06-15"), day(t, "2024-06-10"))

	lines := strings.Split(renderCalendarGrid(cells), "\n")
	require.Len(t, lines, 1+recurrence.CalendarWeeks)
	require.Equal(t, "Su  Mo  Tu  We  Th  Fr  Sa", lines[0])
	require.Equal(t, strings.Repeat(" ", 24)+" 1x", lines[1])
	require.Equal(t, " 2x  3+  4x  5x  6x  7x  8x", lines[2])
	require.Equal(t, " 9x 10! 11* 12* 13* 14* 15*", lines[3])
}

func TestRenderHistory(t *testing.T) {
	task := dailyTask(t, "2024-06-01")
	task = recurrence.MarkDone(task, day(t, "2024-06-03"), day(t, "2024-06-03"), "You")
	month := day(t, "2024-06-01")
	cells := recurrence.MonthCalendar(task, month, day(t, "2024-06-10"))

	v := renderHistory(task, cells, month)
	require.Contains(t, v.text, "June 2024")
	require.Contains(t, v.text, "<pre>")
	require.Contains(t, v.text, "Done 1, missed 8 this month.")
	require.Len(t, v.rows, 1)
	require.Equal(t, cbHistoryPrefix+taskID+":2024-05", *v.rows[0][0].CallbackData)
	require.Equal(t, cbHistoryPrefix+taskID+":2024-07", *v.rows[0][1].CallbackData)
}

func TestRenderOverview(t *testing.T) {
	require.Empty(t, renderOverview(nil, time.Time{}).rows)

	today := day(t, "2024-06-10")
	task := dailyTask(t, "2024-06-08")
	task.IsShared = true
	items := []service.TaskOverview{{
		Task:     task,
		Status:   recurrence.StatusOf(task, today),
		RuleText: recurrence.RuleText(task),
	}}

	v := renderOverview(items, today)
	require.Contains(t, v.text, "⚠️ <b>Water &lt;plants&gt;</b> <code>3f2b7c1e</code>")
	require.Contains(t, v.text, "👥")
	require.Contains(t, v.text, "♻️ every day")
	require.Contains(t, v.text, "Overdue: Yesterday")
	require.Equal(t, cbHistoryPrefix+taskID+":", *v.rows[0][0].CallbackData)
	require.Equal(t, cbDeletePrefix+taskID, *v.rows[0][1].CallbackData)
}

func TestRelativeDate(t *testing.T) {
	today := day(t, "2024-06-10")
	cases := map[string]string{
		"2024-06-10": "Today",
		"2024-06-11": "Tomorrow",
		"2024-06-09": "Yesterday",
		"2024-06-07": "3 days ago",
		"2024-06-13": "In 3 days",
		"2024-06-20": "Jun 20, 2024",
		"2024-06-03": "Jun 3, 2024",
	}
	for in, want := range cases {
		require.Equal(t, want, relativeDate(day(t, in), today), in)
	}
}

func TestPlainMessage(t *testing.T) {
	require.Equal(t, "Task not found.", plainMessage(fmt.Errorf("get: %w", service.ErrNotFound)))
	require.Equal(t, "⚠️ title is required\ncategory is required",
		plainMessage(&service.ValidationError{Problems: []string{"title is required", "category is required"}}))
	require.Equal(t, "Something went wrong: boom", plainMessage(errors.New("boom")))

	long := plainMessage(errors.New(strings.Repeat("é", 300)))
	require.LessOrEqual(t, len([]rune(long)), 191)
	require.Equal(t, "&lt;b&gt;", escape("<b>"))
}

func TestDescribeSchedule(t *testing.T) {
	require.Equal(t, "every day at 07:30", describeSchedule("07:30", 6*time.Hour))
	require.Equal(t, "every 6 hours", describeSchedule("", 6*time.Hour))
	require.Equal(t, "every hour", describeSchedule("", time.Hour))
}

func TestShortTitle(t *testing.T) {
	require.Equal(t, "Water", shortTitle(" water ", 10))
	require.Equal(t, "Water the…", shortTitle("water the ferns", 10))
	require.Equal(t, "🏠 Home", categoryLabel("home"))
}
