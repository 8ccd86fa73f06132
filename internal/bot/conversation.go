package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"today-i-need/internal/model"
	"today-i-need/internal/recurrence"
	"today-i-need/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageNotes
	stageCategory
	stageStartDate
	stageEndDate
	stageRepeat
	stageCustomRule
)

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	today := b.taskSvc.Today()

	switch state.stage {
	case stageTitle:
		if n := utf8.RuneCountInString(text); n < 2 || n > 100 {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title needs 2 to 100 characters. Try again.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageNotes
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Any notes? (or press «Skip»)", skipKeyboard())
	case stageNotes:
		if !isSkipInput(text) {
			state.input.Subtitle = text
		}
		state.stage = stageCategory
		return b.askCategory(ctx, msg)
	case stageCategory:
		if text == "" || isSkipInput(text) || utf8.RuneCountInString(text) > 50 {
			return b.sendText(msg.Chat.ID, "A category is required, up to 50 characters.")
		}
		state.input.Category = text
		state.stage = stageStartDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📆 When does it start? Send <code>YYYY-MM-DD</code> or press «Today».", startDateKeyboard())
	case stageStartDate:
		start, err := parseDateInput(text, today)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2024-06-30</code>, «Today» or «Tomorrow».", startDateKeyboard())
		}
		state.input.StartDate = start
		state.stage = stageEndDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏁 Does it end? Send <code>YYYY-MM-DD</code> or press «Skip».", skipKeyboard())
	case stageEndDate:
		if !isSkipInput(text) {
			end, err := parseDateInput(text, today)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2024-12-31</code> or «Skip».", skipKeyboard())
			}
			if end.Before(state.input.StartDate) {
				return b.sendWithReplyMarkup(msg.Chat.ID, "The end date cannot be before the start date.", skipKeyboard())
			}
			state.input.EndDate = &end
		}
		state.stage = stageRepeat
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 How often does it repeat?", repeatKeyboard())
	case stageRepeat:
		repeat, err := model.ParseRepeatValue(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick one of the options below.", repeatKeyboard())
		}
		state.input.RepeatValue = repeat
		if repeat == model.RepeatCustom {
			state.stage = stageCustomRule
			return b.sendWithReplyMarkup(msg.Chat.ID,
				"🧩 Send a recurrence rule, for example <code>FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR</code>\nor <code>FREQ=MONTHLY;BYDAY=TU;BYSETPOS=2</code>.",
				cancelKeyboard())
		}
		return b.finishTaskCreation(ctx, msg, state.input)
	case stageCustomRule:
		if _, err := recurrence.ParseRule(text, state.input.StartDate); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("That rule does not parse (%s). Try again.", escape(err.Error())), cancelKeyboard())
		}
		state.input.CustomRrule = text
		return b.finishTaskCreation(ctx, msg, state.input)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "The dialog was reset. Start again with /newtask.")
	}
}

func (b *Bot) askCategory(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	existing, err := b.categorySvc.List(ctx, user)
	if err != nil {
		log.Printf("list categories for %d: %v", user.ID, err)
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Pick a category or type a new one.", categoryKeyboard(categoryOptions(existing)))
}

func (b *Bot) finishTaskCreation(ctx context.Context, msg *tgbotapi.Message, input service.TaskInput) error {
	defer b.clearConversation(msg.From.ID)

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.CreateTask(ctx, user, input)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Could not save the task.\n"+userMessage(err))
	}

	log.Printf("[info] task created id=%s user=%d repeat=%s", task.ID, user.ID, task.RepeatValue)
	return b.sendText(msg.Chat.ID, "✅ <b>Task saved</b>\n"+formatTaskSummary(*task, b.taskSvc.Today()))
}
