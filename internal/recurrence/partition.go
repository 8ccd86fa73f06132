package recurrence

import (
	"time"

	"today-i-need/internal/model"
)

// Instance is one display-ready occurrence of a task.
type Instance struct {
	Key         OccurrenceKey
	Task        model.Task
	DueDate     time.Time
	CompletedAt *time.Time
	CompletedBy string
	WasOverdue  bool
}

// ID is the display identifier of the instance.
func (i Instance) ID() string {
	return i.Key.String()
}

type Partition struct {
	Active  []Instance
	Done    []Instance
	Overdue []Instance
}

// Classify sorts the occurrences of active tasks around ref: today's
// occurrence goes to Active or Done, every earlier due date goes to Overdue,
// or to Done as a backfilled instance when it was completed later.
func Classify(tasks []model.Task, ref time.Time) Partition {
	return ClassifyHiding(tasks, ref, nil)
}

// ClassifyHiding is Classify with the overdue instances in hidden left out.
func ClassifyHiding(tasks []model.Task, ref time.Time, hidden HiddenSet) Partition {
	ref = Day(ref)
	var p Partition

	for _, task := range tasks {
		if !task.IsActive {
			continue
		}
		s := Compile(task)
		done := completionIndex(task.CompletedDates)

		if s.IsDue(ref) {
			inst := Instance{
				Key:     OccurrenceKey{TaskID: task.ID, Date: ref, Kind: KindReal},
				Task:    task,
				DueDate: ref,
			}
			if c, ok := done[DateKey(ref)]; ok {
				p.Done = append(p.Done, decorate(inst, c))
			} else {
				p.Active = append(p.Active, inst)
			}
		}

		for _, d := range s.Occurrences(s.start, addDays(ref, -1)) {
			if c, ok := done[DateKey(d)]; ok {
				inst := Instance{
					Key:        OccurrenceKey{TaskID: task.ID, Date: d, Kind: KindBackfilled},
					Task:       task,
					DueDate:    d,
					WasOverdue: true,
				}
				p.Done = append(p.Done, decorate(inst, c))
				continue
			}
			key := OccurrenceKey{TaskID: task.ID, Date: d, Kind: KindOverdue}
			if hidden.Has(key) {
				continue
			}
			p.Overdue = append(p.Overdue, Instance{Key: key, Task: task, DueDate: d})
		}
	}
	return p
}

func decorate(inst Instance, c model.Completion) Instance {
	at := c.CompletedAt
	inst.CompletedAt = &at
	inst.CompletedBy = c.CompletedBy
	return inst
}
