package recurrence

import (
	"time"

	"today-i-need/internal/model"
)

// CompletionOn returns the completion recorded for date. When duplicates
// exist for the same date the most recent one is returned.
func CompletionOn(task model.Task, date time.Time) (model.Completion, bool) {
	return latestCompletion(task.CompletedDates, DateKey(date))
}

func IsCompleted(task model.Task, date time.Time) bool {
	key := DateKey(date)
	for _, c := range task.CompletedDates {
		if c.Date == key {
			return true
		}
	}
	return false
}

// MarkDone returns a copy of task with exactly one completion for date.
// Earlier records for the same date are replaced, so repeating the call is
// harmless.
func MarkDone(task model.Task, date, completedAt time.Time, completedBy string) model.Task {
	key := DateKey(date)
	completions := withoutDate(task.CompletedDates, key)
	completions = append(completions, model.Completion{
		TaskID:      task.ID,
		Date:        key,
		CompletedAt: completedAt,
		CompletedBy: completedBy,
	})
	task.CompletedDates = completions
	return task
}

// Undo returns a copy of task without any completion for date.
func Undo(task model.Task, date time.Time) model.Task {
	task.CompletedDates = withoutDate(task.CompletedDates, DateKey(date))
	return task
}

func withoutDate(completions []model.Completion, key string) []model.Completion {
	out := make([]model.Completion, 0, len(completions)+1)
	for _, c := range completions {
		if c.Date != key {
			out = append(out, c)
		}
	}
	return out
}

func latestCompletion(completions []model.Completion, key string) (model.Completion, bool) {
	var (
		found model.Completion
		ok    bool
	)
	for _, c := range completions {
		if c.Date != key {
			continue
		}
		if !ok || c.CompletedAt.After(found.CompletedAt) {
			found, ok = c, true
		}
	}
	return found, ok
}

func completionIndex(completions []model.Completion) map[string]model.Completion {
	index := make(map[string]model.Completion, len(completions))
	for _, c := range completions {
		if prev, ok := index[c.Date]; ok && !c.CompletedAt.After(prev.CompletedAt) {
			continue
		}
		index[c.Date] = c
	}
	return index
}
