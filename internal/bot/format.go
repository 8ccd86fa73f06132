package bot

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"today-i-need/internal/model"
	"today-i-need/internal/recurrence"
	"today-i-need/internal/service"
)

const (
	monthLayout = "2006-01"

	maxActiveButtons  = 20
	maxDoneShown      = 10
	maxOverdueShown   = 10
	maxOverviewButton = 30
)

// view is a message body with its inline keyboard rows.
type view struct {
	text string
	rows [][]tgbotapi.InlineKeyboardButton
}

func renderToday(p recurrence.Partition, today time.Time, loc *time.Location, hiddenCount int) view {
	var v view
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📅 <b>Today</b> · %s\n\n", today.Format("Monday, Jan 2")))

	sb.WriteString(fmt.Sprintf("🔥 <b>To do</b> (%d)\n", len(p.Active)))
	if len(p.Active) == 0 {
		sb.WriteString("— all clear\n")
	}
	for i, inst := range p.Active {
		sb.WriteString(formatInstanceLine(inst))
		if i < maxActiveButtons {
			v.rows = append(v.rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ "+shortTitle(inst.Task.Title, 28), cbDonePrefix+inst.Key.Token()),
			))
		}
	}

	if len(p.Done) > 0 {
		done := append([]recurrence.Instance(nil), p.Done...)
		sort.SliceStable(done, func(i, j int) bool { return done[i].DueDate.After(done[j].DueDate) })

		sb.WriteString(fmt.Sprintf("\n✅ <b>Done</b> (%d)\n", len(done)))
		for i, inst := range done {
			if i == maxDoneShown {
				sb.WriteString(fmt.Sprintf("…and %d more\n", len(done)-maxDoneShown))
				break
			}
			sb.WriteString(formatDoneLine(inst, today, loc))
			v.rows = append(v.rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("↩️ %s · %s", shortTitle(inst.Task.Title, 20), shortDate(inst.DueDate, today)), cbUndoPrefix+inst.Key.Token()),
			))
		}
	}

	if len(p.Overdue) > 0 {
		overdue := append([]recurrence.Instance(nil), p.Overdue...)
		sort.SliceStable(overdue, func(i, j int) bool { return overdue[i].DueDate.After(overdue[j].DueDate) })

		sb.WriteString(fmt.Sprintf("\n⚠️ <b>Overdue</b> (%d)\n", len(overdue)))
		for i, inst := range overdue {
			if i == maxOverdueShown {
				sb.WriteString(fmt.Sprintf("…and %d more\n", len(overdue)-maxOverdueShown))
				break
			}
			sb.WriteString(fmt.Sprintf("• %s · %s\n", escape(normalizeTitle(inst.Task.Title)), relativeDate(inst.DueDate, today)))
			v.rows = append(v.rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %s · %s", shortTitle(inst.Task.Title, 20), shortDate(inst.DueDate, today)), cbDonePrefix+inst.Key.Token()),
				tgbotapi.NewInlineKeyboardButtonData("🙈", cbHidePrefix+inst.Key.Token()),
			))
		}
	}

	if hiddenCount > 0 {
		sb.WriteString(fmt.Sprintf("\n🙈 %d overdue hidden\n", hiddenCount))
		v.rows = append(v.rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👁 Show hidden", cbUnhide),
		))
	}

	v.text = strings.TrimSpace(sb.String())
	return v
}

func formatInstanceLine(inst recurrence.Instance) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• %s", escape(normalizeTitle(inst.Task.Title))))
	if category := strings.TrimSpace(inst.Task.Category); category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(category)))
	}
	if inst.Task.IsShared {
		sb.WriteString(" 👥")
	}
	sb.WriteString(fmt.Sprintf(" <code>%s</code>\n", inst.Task.ShortID()))
	if inst.Task.Subtitle != "" {
		sb.WriteString(fmt.Sprintf("   📝 %s\n", escape(inst.Task.Subtitle)))
	}
	return sb.String()
}

func formatDoneLine(inst recurrence.Instance, today time.Time, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• <s>%s</s>", escape(normalizeTitle(inst.Task.Title))))
	if inst.WasOverdue {
		sb.WriteString(fmt.Sprintf(" · was due %s", relativeDate(inst.DueDate, today)))
	}
	if inst.CompletedAt != nil {
		at := *inst.CompletedAt
		if loc != nil {
			at = at.In(loc)
		}
		sb.WriteString(fmt.Sprintf(" · %s", at.Format("Jan 2 15:04")))
	}
	if inst.CompletedBy != "" {
		sb.WriteString(fmt.Sprintf(" by %s", escape(inst.CompletedBy)))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func renderOverview(items []service.TaskOverview, today time.Time) view {
	if len(items) == 0 {
		return view{text: "You have no tasks yet. Add one with /newtask."}
	}

	var v view
	var sb strings.Builder
	sb.WriteString("📋 <b>Your tasks</b>\n\n")

	for i, item := range items {
		sb.WriteString(formatOverviewItem(item, today))
		if i < maxOverviewButton {
			v.rows = append(v.rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📅 "+shortTitle(item.Task.Title, 24), cbHistoryPrefix+item.Task.ID+":"),
				tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+item.Task.ID),
			))
		}
	}

	v.text = strings.TrimSpace(sb.String())
	return v
}

func formatOverviewItem(item service.TaskOverview, today time.Time) string {
	var sb strings.Builder
	st := item.Status

	icon := "🟢"
	switch {
	case st.IsOverdue:
		icon = "⚠️"
	case st.IsDueToday && st.IsCompleted:
		icon = "✅"
	case st.IsDueToday:
		icon = "⏳"
	}

	sb.WriteString(fmt.Sprintf("%s <b>%s</b> <code>%s</code>", icon, escape(normalizeTitle(item.Task.Title)), item.Task.ShortID()))
	if category := strings.TrimSpace(item.Task.Category); category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(category)))
	}
	if item.Task.IsShared {
		sb.WriteString(" 👥")
	}
	sb.WriteString(fmt.Sprintf("\n   ♻️ %s\n", escape(item.RuleText)))

	switch st.Label {
	case recurrence.LabelOverdue:
		sb.WriteString(fmt.Sprintf("   ⏰ %s: %s\n", st.Label, relativeDate(st.OverdueDate, today)))
	case recurrence.LabelNextDue:
		sb.WriteString(fmt.Sprintf("   📆 %s: %s\n", st.Label, relativeDate(st.NextDueDate, today)))
	default:
		sb.WriteString(fmt.Sprintf("   📆 %s\n", st.Label))
	}
	if item.Task.Subtitle != "" {
		sb.WriteString(fmt.Sprintf("   📝 %s\n", escape(item.Task.Subtitle)))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// formatTaskSummary lists a task's settings after it was created or edited.
func formatTaskSummary(task model.Task, today time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• <b>ID:</b> <code>%s</code>\n", task.ShortID()))
	sb.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(normalizeTitle(task.Title))))
	sb.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", categoryLabel(task.Category)))
	if task.Subtitle != "" {
		sb.WriteString(fmt.Sprintf("• <b>Notes:</b> %s\n", escape(task.Subtitle)))
	}
	sb.WriteString(fmt.Sprintf("• <b>Starts:</b> %s\n", recurrence.DateKey(task.StartDate)))
	if task.EndDate != nil {
		sb.WriteString(fmt.Sprintf("• <b>Ends:</b> %s\n", recurrence.DateKey(*task.EndDate)))
	}
	sb.WriteString(fmt.Sprintf("• <b>Repeats:</b> %s\n", escape(recurrence.RuleText(task))))
	if task.IsShared {
		sb.WriteString("• <b>Shared</b> 👥\n")
	}

	st := recurrence.StatusOf(task, today)
	if !st.NextDueDate.IsZero() {
		sb.WriteString(fmt.Sprintf("• <b>Next due:</b> %s\n", relativeDate(st.NextDueDate, today)))
	}
	return strings.TrimSpace(sb.String())
}

var calendarMarks = map[recurrence.DayStatus]string{
	recurrence.DayNone:      " ",
	recurrence.DayCompleted: "+",
	recurrence.DayMissed:    "x",
	recurrence.DayDueToday:  "!",
	recurrence.DayDueFuture: "*",
}

func renderHistory(task model.Task, cells []recurrence.CalendarDay, month time.Time) view {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 <b>%s</b> · %s\n", escape(normalizeTitle(task.Title)), month.Format("January 2006")))
	sb.WriteString("<pre>")
	sb.WriteString(renderCalendarGrid(cells))
	sb.WriteString("</pre>\n")
	sb.WriteString("+ done  x missed  ! today  * upcoming\n")

	var completed, missed int
	for _, c := range cells {
		if !c.InMonth {
			continue
		}
		switch c.Status {
		case recurrence.DayCompleted:
			completed++
		case recurrence.DayMissed:
			missed++
		}
	}
	sb.WriteString(fmt.Sprintf("Done %d, missed %d this month.", completed, missed))

	id := task.ID
	prev := time.Date(month.Year(), month.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(month.Year(), month.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return view{
		text: sb.String(),
		rows: [][]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀ "+prev.Format("Jan"), cbHistoryPrefix+id+":"+prev.Format(monthLayout)),
			tgbotapi.NewInlineKeyboardButtonData(next.Format("Jan")+" ▶", cbHistoryPrefix+id+":"+next.Format(monthLayout)),
		)},
	}
}

// renderCalendarGrid draws a month grid in fixed-width text: a weekday header
// then one line per week, each cell the day number followed by its mark.
func renderCalendarGrid(cells []recurrence.CalendarDay) string {
	var sb strings.Builder
	sb.WriteString("Su  Mo  Tu  We  Th  Fr  Sa\n")
	for i, c := range cells {
		if i%7 != 0 {
			sb.WriteByte(' ')
		}
		if c.InMonth {
			sb.WriteString(fmt.Sprintf("%2d%s", c.Date.Day(), calendarMarks[c.Status]))
		} else {
			sb.WriteString("   ")
		}
		if i%7 == 6 {
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// relativeDate names a date relative to today.
func relativeDate(d, today time.Time) string {
	days := int(recurrence.Day(d).Sub(recurrence.Day(today)).Hours() / 24)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days < 0 && days > -7:
		return fmt.Sprintf("%d days ago", -days)
	case days > 1 && days < 7:
		return fmt.Sprintf("In %d days", days)
	default:
		return d.Format("Jan 2, 2006")
	}
}

func shortDate(d, today time.Time) string {
	if d.Year() == today.Year() {
		return d.Format("Jan 2")
	}
	return d.Format("Jan 2, 2006")
}

func describeSchedule(reportTime string, interval time.Duration) string {
	if reportTime != "" {
		return "every day at " + reportTime
	}
	hours := int(interval.Hours())
	if hours == 1 {
		return "every hour"
	}
	return fmt.Sprintf("every %d hours", hours)
}

// userMessage turns a service error into an HTML reply.
func userMessage(err error) string {
	return escape(plainMessage(err))
}

// plainMessage turns a service error into plain text, short enough for a
// callback notification.
func plainMessage(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "Task not found."
	case errors.Is(err, service.ErrAmbiguous):
		return "That id matches several tasks. Use more characters."
	case errors.Is(err, service.ErrNotCompleted):
		return "That occurrence is not marked done."
	case errors.As(err, &verr):
		return "⚠️ " + strings.Join(verr.Problems, "\n")
	default:
		msg := []rune("Something went wrong: " + err.Error())
		if len(msg) > 190 {
			return string(msg[:190]) + "…"
		}
		return string(msg)
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	var icon string
	switch strings.ToLower(base) {
	case "study":
		icon = "🎓"
	case "work":
		icon = "💼"
	case "home":
		icon = "🏠"
	case "health":
		icon = "🩺"
	case "personal":
		icon = "🧩"
	default:
		icon = "🏷️"
	}
	return fmt.Sprintf("%s %s", icon, escape(normalizeTitle(base)))
}
