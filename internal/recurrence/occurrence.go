package recurrence

import "time"

// OccurrenceKind tells a task's own row apart from the synthetic instances
// generated for past occurrences.
type OccurrenceKind int

const (
	KindReal OccurrenceKind = iota
	KindOverdue
	KindBackfilled
)

func (k OccurrenceKind) String() string {
	switch k {
	case KindOverdue:
		return "overdue"
	case KindBackfilled:
		return "backfilled"
	default:
		return "real"
	}
}

// OccurrenceKey identifies one occurrence of a task. It is never persisted.
type OccurrenceKey struct {
	TaskID string
	Date   time.Time
	Kind   OccurrenceKind
}

// String keeps the display identifier format: the bare task id for the
// task's own occurrence, {taskID}-{YYYY-MM-DD} for synthetic instances.
func (k OccurrenceKey) String() string {
	if k.Kind == KindReal {
		return k.TaskID
	}
	return k.Token()
}

// Token always carries the date, so it can be decoded without a clock.
func (k OccurrenceKey) Token() string {
	return k.TaskID + "-" + DateKey(k.Date)
}

// ParseOccurrenceKey decodes a display identifier. The date suffix is read
// from the right, so task ids containing hyphens survive. A string without a
// valid date suffix is taken whole as the task id, dated today.
func ParseOccurrenceKey(s string, today time.Time) OccurrenceKey {
	today = Day(today)
	fallback := OccurrenceKey{TaskID: s, Date: today, Kind: KindReal}

	const suffixLen = len(dateLayout) + 1
	if len(s) <= suffixLen || s[len(s)-suffixLen] != '-' {
		return fallback
	}
	date, err := ParseDateKey(s[len(s)-len(dateLayout):])
	if err != nil {
		return fallback
	}

	kind := KindOverdue
	if !date.Before(today) {
		kind = KindReal
	}
	return OccurrenceKey{TaskID: s[:len(s)-suffixLen], Date: date, Kind: kind}
}

// HiddenSet holds overdue occurrences the user chose not to see.
type HiddenSet map[string]struct{}

func (h HiddenSet) Hide(k OccurrenceKey) {
	h[k.TaskID+"|"+DateKey(k.Date)] = struct{}{}
}

func (h HiddenSet) Unhide(k OccurrenceKey) {
	delete(h, k.TaskID+"|"+DateKey(k.Date))
}

func (h HiddenSet) Has(k OccurrenceKey) bool {
	if h == nil {
		return false
	}
	_, ok := h[k.TaskID+"|"+DateKey(k.Date)]
	return ok
}
