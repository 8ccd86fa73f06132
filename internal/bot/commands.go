package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"today-i-need/internal/model"
	"today-i-need/internal/recurrence"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled. Start again whenever you like.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "today":
		return b.handleToday(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "undo":
		return b.handleUndo(ctx, msg)
	case "history":
		return b.handleHistory(ctx, msg)
	case "edit":
		return b.handleEdit(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "interval":
		return b.handleInterval(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /today — what is due today, done and overdue\n" +
	"• /newtask — add a recurring task step by step\n" +
	"• /tasks — all tasks, most urgent first\n" +
	"• /done &lt;id&gt; [YYYY-MM-DD] — mark an occurrence done\n" +
	"• /undo &lt;id&gt; [YYYY-MM-DD] — unmark an occurrence\n" +
	"• /history &lt;id&gt; [YYYY-MM] — monthly calendar of a task\n" +
	"• /edit &lt;id&gt; &lt;title|category|notes|end|rule|shared&gt; &lt;value&gt;\n" +
	"• /delete &lt;id&gt; — delete a task\n" +
	"• /categories — categories in use\n" +
	"• /report — send the daily summary now\n" +
	"• /interval [hours] — how often summaries arrive\n" +
	"• /cancel — cancel the current input\n\n" +
	"Ids are the short codes shown next to each task, e.g. <code>3f2b7c1e</code>."

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep track of the things you need to do every day, week, month or year.</b>\n\n%s",
		escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.handleToday(ctx, msg)
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	v, err := b.todayView(ctx, msg.From.ID, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	return b.sendView(msg.Chat.ID, v)
}

func (b *Bot) todayView(ctx context.Context, telegramID int64, user *model.User) (view, error) {
	hidden := b.hiddenFor(telegramID)
	p, err := b.taskSvc.TodayView(ctx, user, hidden)
	if err != nil {
		return view{}, err
	}
	return renderToday(p, b.taskSvc.Today(), b.config.Location, len(hidden)), nil
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	log.Printf("[info] list tasks for user=%d", user.ID)
	items, err := b.taskSvc.Overview(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	return b.sendView(msg.Chat.ID, renderOverview(items, b.taskSvc.Today()))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseOccurrenceArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, err.Error()+"\nUsage: /done &lt;id&gt; [YYYY-MM-DD]")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, key, err := b.taskSvc.MarkDoneByID(ctx, user, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	log.Printf("[info] occurrence done task=%s date=%s user=%d", task.ID, recurrence.DateKey(key.Date), user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ «%s» done for %s.",
		escape(normalizeTitle(task.Title)), relativeDate(key.Date, b.taskSvc.Today())))
}

func (b *Bot) handleUndo(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseOccurrenceArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, err.Error()+"\nUsage: /undo &lt;id&gt; [YYYY-MM-DD]")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, key, err := b.taskSvc.UndoByID(ctx, user, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	log.Printf("[info] occurrence undone task=%s date=%s user=%d", task.ID, recurrence.DateKey(key.Date), user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ «%s» is no longer done for %s.",
		escape(normalizeTitle(task.Title)), relativeDate(key.Date, b.taskSvc.Today())))
}

func (b *Bot) handleHistory(ctx context.Context, msg *tgbotapi.Message) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 || len(fields) > 2 {
		return b.sendText(msg.Chat.ID, "Usage: /history &lt;id&gt; [YYYY-MM]")
	}
	var month time.Time
	if len(fields) == 2 {
		parsed, err := time.Parse(monthLayout, fields[1])
		if err != nil {
			return b.sendText(msg.Chat.ID, "Month must look like <code>2024-06</code>.")
		}
		month = parsed
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	v, err := b.historyView(ctx, user, fields[0], month)
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	return b.sendView(msg.Chat.ID, v)
}

func (b *Bot) historyView(ctx context.Context, user *model.User, ref string, month time.Time) (view, error) {
	task, cells, err := b.taskSvc.History(ctx, user, ref, month)
	if err != nil {
		return view{}, err
	}
	if month.IsZero() {
		month = b.taskSvc.Today()
	}
	return renderHistory(*task, cells, month), nil
}

func (b *Bot) handleEdit(ctx context.Context, msg *tgbotapi.Message) error {
	ref, field, value, err := parseEditArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error())+"\nUsage: /edit &lt;id&gt; &lt;title|category|notes|end|rule|shared&gt; &lt;value&gt;")
	}
	patch, err := buildPatch(field, value, b.taskSvc.Today())
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.UpdateTask(ctx, user, ref, patch)
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	log.Printf("[info] task updated id=%s field=%s user=%d", task.ID, field, user.ID)
	return b.sendText(msg.Chat.ID, "✏️ Saved.\n"+formatTaskSummary(*task, b.taskSvc.Today()))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Usage: /delete &lt;id&gt;")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, ref)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, ref string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, ref)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}

	text := fmt.Sprintf("Delete «%s» (<code>%s</code>)? Its history goes with it.", escape(normalizeTitle(task.Title)), task.ShortID())
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, title: task.Title})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteTask(ctx, msg.Chat.ID, msg.From, req)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Kept it.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, from *tgbotapi.User, req confirmationRequest) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.DeleteTask(ctx, user, req.taskID)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}

	log.Printf("[info] task deleted id=%s user=%d", task.ID, user.ID)
	return b.sendText(chatID, fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(task.Title))))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "No categories yet. They appear once a task uses them.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s\n", categoryLabel(cat)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.DailySummary(ctx, *user, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleInterval(msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.mu.Lock()
		current := describeSchedule(b.config.ReportTime, b.config.ReportInterval)
		next := b.scheduler.Next(b.reportEntry)
		b.mu.Unlock()

		text := fmt.Sprintf("Summaries are sent %s.", current)
		if !next.IsZero() {
			text += fmt.Sprintf(" Next one: %s.", next.In(b.config.Location).Format("Jan 2 15:04"))
		}
		return b.sendText(msg.Chat.ID, text+"\nChange it with /interval &lt;hours&gt;, e.g. /interval 6")
	}

	hours, err := strconv.Atoi(args)
	if err != nil || hours <= 0 {
		return b.sendText(msg.Chat.ID, "The interval must be a positive number of hours, e.g. /interval 6")
	}

	b.mu.Lock()
	prevTime, prevInterval := b.config.ReportTime, b.config.ReportInterval
	b.config.ReportTime = ""
	b.config.ReportInterval = time.Duration(hours) * time.Hour
	err = b.scheduleReportsLocked()
	if err != nil {
		b.config.ReportTime, b.config.ReportInterval = prevTime, prevInterval
		if restoreErr := b.scheduleReportsLocked(); restoreErr != nil {
			log.Printf("restore report schedule: %v", restoreErr)
		}
	}
	b.mu.Unlock()

	if err != nil {
		return b.sendText(msg.Chat.ID, userMessage(err))
	}
	log.Printf("[info] report interval set to %dh by %d", hours, msg.From.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Summaries will now arrive every %d hours.", hours))
}
