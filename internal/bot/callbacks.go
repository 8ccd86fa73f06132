package bot

import (
	"context"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"today-i-need/internal/recurrence"
)

const (
	cbDonePrefix    = "done:"
	cbUndoPrefix    = "undo:"
	cbHidePrefix    = "hide:"
	cbUnhide        = "unhide"
	cbHistoryPrefix = "hist:"
	cbDeletePrefix  = "del:"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	log.Printf("[info] callback %q from %d", data, cb.From.ID)

	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		b.ack(cb, "")
		return err
	}

	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		_, _, err := b.taskSvc.MarkDoneByID(ctx, user, strings.TrimPrefix(data, cbDonePrefix))
		if err != nil {
			b.ack(cb, plainMessage(err))
			return nil
		}
		b.ack(cb, "Done ✓")
		return b.refreshToday(ctx, cb)
	case strings.HasPrefix(data, cbUndoPrefix):
		_, _, err := b.taskSvc.UndoByID(ctx, user, strings.TrimPrefix(data, cbUndoPrefix))
		if err != nil {
			b.ack(cb, plainMessage(err))
			return nil
		}
		b.ack(cb, "Undone")
		return b.refreshToday(ctx, cb)
	case strings.HasPrefix(data, cbHidePrefix):
		key := recurrence.ParseOccurrenceKey(strings.TrimPrefix(data, cbHidePrefix), b.taskSvc.Today())
		b.hideOccurrence(cb.From.ID, key)
		b.ack(cb, "Hidden")
		return b.refreshToday(ctx, cb)
	case data == cbUnhide:
		b.unhideAll(cb.From.ID)
		b.ack(cb, "")
		return b.refreshToday(ctx, cb)
	case strings.HasPrefix(data, cbHistoryPrefix):
		ref, month := parseHistoryData(strings.TrimPrefix(data, cbHistoryPrefix))
		v, err := b.historyView(ctx, user, ref, month)
		if err != nil {
			b.ack(cb, plainMessage(err))
			return nil
		}
		b.ack(cb, "")
		if month.IsZero() {
			return b.sendView(chatID, v)
		}
		return b.editView(chatID, cb.Message.MessageID, v)
	case strings.HasPrefix(data, cbDeletePrefix):
		b.ack(cb, "")
		return b.askDeleteConfirmation(ctx, chatID, cb.From, strings.TrimPrefix(data, cbDeletePrefix))
	default:
		b.ack(cb, "")
		return nil
	}
}

func (b *Bot) refreshToday(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		return err
	}
	v, err := b.todayView(ctx, cb.From.ID, user)
	if err != nil {
		return err
	}
	return b.editView(cb.Message.Chat.ID, cb.Message.MessageID, v)
}

// parseHistoryData splits "taskID:YYYY-MM"; an empty or invalid month yields
// the zero time.
func parseHistoryData(payload string) (string, time.Time) {
	ref, rawMonth, _ := strings.Cut(payload, ":")
	month, err := time.Parse(monthLayout, rawMonth)
	if err != nil {
		return ref, time.Time{}
	}
	return ref, month
}
