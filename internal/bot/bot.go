package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"today-i-need/internal/config"
	"today-i-need/internal/model"
	"today-i-need/internal/recurrence"
	"today-i-need/internal/repository"
	"today-i-need/internal/service"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type confirmationRequest struct {
	taskID string
	title  string
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	categorySvc   *service.CategoryService
	taskSvc       *service.TaskService
	reminderSvc   *service.ReminderService
	scheduler     *service.SchedulerService
	config        *config.Config
	now           service.Clock
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	hidden        map[int64]recurrence.HiddenSet
	reportEntry   cron.EntryID
	mu            sync.Mutex
}

func New(token string, userRepo *repository.UserRepository, categorySvc *service.CategoryService, taskSvc *service.TaskService, reminderSvc *service.ReminderService, scheduler *service.SchedulerService, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		categorySvc:   categorySvc,
		taskSvc:       taskSvc,
		reminderSvc:   reminderSvc,
		scheduler:     scheduler,
		config:        cfg,
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		hidden:        make(map[int64]recurrence.HiddenSet),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

// ScheduleReports registers the summary job: daily at REPORT_TIME when it is
// set, otherwise every ReportInterval. A previous registration is replaced.
func (b *Bot) ScheduleReports() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scheduleReportsLocked()
}

func (b *Bot) scheduleReportsLocked() error {
	if b.reportEntry != 0 {
		b.scheduler.Remove(b.reportEntry)
		b.reportEntry = 0
	}

	var (
		id  cron.EntryID
		err error
	)
	if b.config.ReportTime != "" {
		id, err = b.scheduler.ScheduleDaily(b.config.ReportTime, b.runReports)
	} else {
		id, err = b.scheduler.ScheduleInterval(b.config.ReportInterval, b.runReports)
	}
	if err != nil {
		return fmt.Errorf("schedule reports: %w", err)
	}
	b.reportEntry = id
	return nil
}

func (b *Bot) runReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.SendDailyReports(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("report: %v", err)
	}
}

// SendDailyReports sends a summary to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListRecipients(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminderSvc.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	log.Printf("[info] daily reports sent to %d users", len(users))
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// sendView sends text with inline buttons, falling back to the main menu
// when there are none.
func (b *Bot) sendView(chatID int64, v view) error {
	if len(v.rows) == 0 {
		return b.sendText(chatID, v.text)
	}
	return b.sendWithReplyMarkup(chatID, v.text, tgbotapi.NewInlineKeyboardMarkup(v.rows...))
}

// editView replaces a message sent by sendView in place.
func (b *Bot) editView(chatID int64, messageID int, v view) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, v.text)
	edit.ParseMode = tgbotapi.ModeHTML
	if len(v.rows) > 0 {
		markup := tgbotapi.NewInlineKeyboardMarkup(v.rows...)
		edit.ReplyMarkup = &markup
	}
	if _, err := b.api.Send(edit); err != nil && !strings.Contains(err.Error(), "message is not modified") {
		return err
	}
	return nil
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.Printf("callback ack: %v", err)
	}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// hiddenFor returns a copy of the user's hidden overdue occurrences.
func (b *Bot) hiddenFor(userID int64) recurrence.HiddenSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(recurrence.HiddenSet, len(b.hidden[userID]))
	for k := range b.hidden[userID] {
		out[k] = struct{}{}
	}
	return out
}

func (b *Bot) hideOccurrence(userID int64, key recurrence.OccurrenceKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.hidden[userID]
	if !ok {
		set = recurrence.HiddenSet{}
		b.hidden[userID] = set
	}
	set.Hide(key)
}

func (b *Bot) unhideAll(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.hidden, userID)
}
