package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"today-i-need/internal/recurrence"
	"today-i-need/internal/service"
)

var defaultCategories = []string{"Home", "Work", "Health", "Study"}

// parseOccurrenceArgs turns "<id>" or "<id> YYYY-MM-DD" into a display
// identifier the task service can decode.
func parseOccurrenceArgs(args string) (string, error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 1:
		return fields[0], nil
	case 2:
		if _, err := recurrence.ParseDateKey(fields[1]); err != nil {
			return "", fmt.Errorf("date must look like 2024-06-30")
		}
		return fields[0] + "-" + fields[1], nil
	default:
		return "", errors.New("give a task id and optionally a date")
	}
}

func parseEditArgs(args string) (ref, field, value string, err error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return "", "", "", errors.New("give a task id, a field and a value")
	}
	ref, field = fields[0], strings.ToLower(fields[1])
	value = strings.Join(fields[2:], " ")
	return ref, field, value, nil
}

// buildPatch maps one /edit field to a task patch. "none" clears optional
// fields.
func buildPatch(field, value string, today time.Time) (service.TaskPatch, error) {
	var patch service.TaskPatch
	reset := strings.EqualFold(value, "none")

	switch field {
	case "title":
		patch.Title = &value
	case "category":
		patch.Category = &value
	case "notes":
		if reset {
			value = ""
		}
		patch.Subtitle = &value
	case "end":
		var end *time.Time
		if !reset {
			d, err := parseDateInput(value, today)
			if err != nil {
				return patch, err
			}
			end = &d
		}
		patch.EndDate = &end
	case "rule":
		if reset {
			value = ""
		} else if _, err := recurrence.ParseRule(value, today); err != nil {
			return patch, fmt.Errorf("that rule does not parse: %w", err)
		}
		patch.CustomRrule = &value
	case "shared":
		shared, ok := parseYesNo(value)
		if !ok {
			return patch, errors.New("shared must be yes or no")
		}
		patch.IsShared = &shared
	default:
		return patch, fmt.Errorf("unknown field %q, use title, category, notes, end, rule or shared", field)
	}
	return patch, nil
}

// parseDateInput accepts YYYY-MM-DD, "today" and "tomorrow".
func parseDateInput(text string, today time.Time) (time.Time, error) {
	value := strings.TrimSpace(strings.ToLower(text))
	value = strings.TrimPrefix(value, "📆 ")
	switch value {
	case "today":
		return recurrence.Day(today), nil
	case "tomorrow":
		return recurrence.Day(today).AddDate(0, 0, 1), nil
	}
	d, err := recurrence.ParseDateKey(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", text)
	}
	return d, nil
}

func parseYesNo(text string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "yes", "y", "on", "true", "1":
		return true, true
	case "no", "n", "off", "false", "0":
		return false, true
	default:
		return false, false
	}
}

// categoryOptions puts the user's categories first, then the defaults they do
// not have yet.
func categoryOptions(existing []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{existing, defaultCategories} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			key := strings.ToLower(name)
			if name == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, name)
		}
	}
	return out
}
