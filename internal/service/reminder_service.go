package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"today-i-need/internal/model"
	"today-i-need/internal/recurrence"
	"today-i-need/internal/repository"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	loc      *time.Location
}

func NewReminderService(taskRepo *repository.TaskRepository, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{taskRepo: taskRepo, loc: loc}
}

func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListActive(ctx, user.ID)
	if err != nil {
		return "", err
	}

	today := recurrence.Today(now, s.loc)
	p := recurrence.Classify(tasks, today)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", today.Format("Monday, Jan 2, 2006")))

	builder.WriteString("🔥 <b>Due today</b>\n")
	if len(p.Active) == 0 {
		builder.WriteString("— nothing left for today\n")
	} else {
		for _, inst := range p.Active {
			builder.WriteString(formatInstance(inst))
		}
	}

	if len(p.Overdue) > 0 {
		builder.WriteString("\n⚠️ <b>Overdue</b>\n")
		for _, group := range groupOverdue(p.Overdue) {
			builder.WriteString(formatOverdueGroup(group, today))
		}
	}

	doneToday := 0
	for _, inst := range p.Done {
		if inst.Key.Kind == recurrence.KindReal {
			doneToday++
		}
	}
	if doneToday > 0 {
		builder.WriteString(fmt.Sprintf("\n✅ Already done today: %d\n", doneToday))
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatInstance(inst recurrence.Instance) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("• %s", html.EscapeString(strings.TrimSpace(inst.Task.Title))))
	if category := strings.TrimSpace(inst.Task.Category); category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(category)))
	}
	sb.WriteString(fmt.Sprintf(" <code>%s</code>", inst.Task.ShortID()))

	if inst.Task.Subtitle != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(inst.Task.Subtitle))))
	}
	sb.WriteString(fmt.Sprintf("\n   ♻️ %s", html.EscapeString(recurrence.RuleText(inst.Task))))

	sb.WriteByte('\n')
	return sb.String()
}

type overdueGroup struct {
	task   model.Task
	latest time.Time
	count  int
}

// groupOverdue folds overdue instances per task, most recently missed first.
func groupOverdue(instances []recurrence.Instance) []overdueGroup {
	byTask := make(map[string]*overdueGroup)
	var order []string
	for _, inst := range instances {
		g, ok := byTask[inst.Task.ID]
		if !ok {
			g = &overdueGroup{task: inst.Task}
			byTask[inst.Task.ID] = g
			order = append(order, inst.Task.ID)
		}
		g.count++
		if inst.DueDate.After(g.latest) {
			g.latest = inst.DueDate
		}
	}

	groups := make([]overdueGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byTask[id])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].latest.After(groups[j].latest)
	})
	return groups
}

func formatOverdueGroup(g overdueGroup, today time.Time) string {
	title := html.EscapeString(strings.TrimSpace(g.task.Title))
	days := int(today.Sub(g.latest).Hours() / 24)
	missed := "missed once"
	if g.count > 1 {
		missed = fmt.Sprintf("missed %d times", g.count)
	}
	return fmt.Sprintf("• %s <code>%s</code>\n   ⏰ last due %s (%d d. ago), %s\n",
		title, g.task.ShortID(), recurrence.DateKey(g.latest), days, missed)
}
