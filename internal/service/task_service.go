package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"today-i-need/internal/model"
	"today-i-need/internal/recurrence"
	"today-i-need/internal/repository"
)

const minPrefixLen = 4

// Clock returns the current instant.
type Clock func() time.Time

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Subtitle    string
	Category    string
	StartDate   time.Time
	EndDate     *time.Time
	RepeatValue model.RepeatValue
	CustomRrule string
	IsShared    bool
}

// TaskPatch carries the fields to change on an existing task; nil fields
// are left as they are.
type TaskPatch struct {
	Title       *string
	Subtitle    *string
	Category    *string
	EndDate     **time.Time
	CustomRrule *string
	IsShared    *bool
}

// TaskOverview is a task together with its derived status and repeat text.
type TaskOverview struct {
	Task     model.Task
	Status   recurrence.Status
	RuleText string
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
	now      Clock
	loc      *time.Location
}

func NewTaskService(taskRepo *repository.TaskRepository, now Clock, loc *time.Location) *TaskService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{taskRepo: taskRepo, now: now, loc: loc}
}

// Today is the current calendar date in the configured location.
func (s *TaskService) Today() time.Time {
	return recurrence.Today(s.now(), s.loc)
}

func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	input.Subtitle = strings.TrimSpace(input.Subtitle)
	if input.StartDate.IsZero() {
		input.StartDate = s.Today()
	}
	if input.RepeatValue == model.RepeatCustom {
		if fixed, ok := recurrence.RepairRule(input.CustomRrule); ok {
			input.CustomRrule = fixed
		}
	} else {
		input.CustomRrule = ""
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	task := model.Task{
		UserID:      user.ID,
		Title:       input.Title,
		Category:    input.Category,
		Subtitle:    input.Subtitle,
		StartDate:   recurrence.Day(input.StartDate),
		RepeatValue: input.RepeatValue,
		CustomRrule: input.CustomRrule,
		IsShared:    input.IsShared,
		IsActive:    true,
	}
	if input.EndDate != nil {
		end := recurrence.Day(*input.EndDate)
		task.EndDate = &end
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func validateInput(input TaskInput) error {
	verr := &ValidationError{}

	switch n := utf8.RuneCountInString(input.Title); {
	case n == 0:
		verr.add("title is required")
	case n < 2:
		verr.add("title must be at least 2 characters")
	case n > 100:
		verr.add("title must be at most 100 characters")
	}

	switch n := utf8.RuneCountInString(input.Category); {
	case n == 0:
		verr.add("category is required")
	case n > 50:
		verr.add("category must be at most 50 characters")
	}

	if input.StartDate.IsZero() {
		verr.add("start date is required")
	} else if input.EndDate != nil && recurrence.Day(*input.EndDate).Before(recurrence.Day(input.StartDate)) {
		verr.add("end date must not be before start date")
	}

	if !input.RepeatValue.Valid() {
		verr.add(fmt.Sprintf("repeat must be one of daily, weekly, monthly, yearly, custom (got %q)", input.RepeatValue))
	}

	return verr.orNil()
}

func (s *TaskService) ListActive(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListActive(ctx, user.ID)
}

// GetTask resolves ref as a full task id or a unique id prefix.
func (s *TaskService) GetTask(ctx context.Context, user *model.User, ref string) (*model.Task, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return nil, ErrNotFound
	}

	task, err := s.taskRepo.FindByID(ctx, user.ID, ref)
	switch {
	case err == nil:
		return task, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find task: %w", err)
	}

	if len(ref) < minPrefixLen {
		return nil, ErrNotFound
	}
	matches, err := s.taskRepo.FindByPrefix(ctx, user.ID, strings.ToLower(ref), 2)
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, ErrAmbiguous
	}
}

func (s *TaskService) UpdateTask(ctx context.Context, user *model.User, ref string, patch TaskPatch) (*model.Task, error) {
	task, err := s.GetTask(ctx, user, ref)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Subtitle != nil {
		task.Subtitle = strings.TrimSpace(*patch.Subtitle)
	}
	if patch.Category != nil {
		task.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.EndDate != nil {
		task.EndDate = nil
		if *patch.EndDate != nil {
			end := recurrence.Day(**patch.EndDate)
			task.EndDate = &end
		}
	}
	if patch.CustomRrule != nil {
		rule := strings.TrimSpace(*patch.CustomRrule)
		if fixed, ok := recurrence.RepairRule(rule); ok {
			rule = fixed
		}
		task.CustomRrule = rule
		if rule != "" {
			task.RepeatValue = model.RepeatCustom
		}
	}
	if patch.IsShared != nil {
		task.IsShared = *patch.IsShared
	}

	if err := validateInput(TaskInput{
		Title:       task.Title,
		Category:    task.Category,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		RepeatValue: task.RepeatValue,
	}); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask soft-deletes a task; it stops appearing in every view.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, ref string) (*model.Task, error) {
	task, err := s.GetTask(ctx, user, ref)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Deactivate(ctx, user.ID, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	task.IsActive = false
	return task, nil
}

// MarkDoneByID completes the occurrence named by a display identifier such as
// "{taskID}-{YYYY-MM-DD}". Identifiers without a date refer to today.
func (s *TaskService) MarkDoneByID(ctx context.Context, user *model.User, id string) (*model.Task, recurrence.OccurrenceKey, error) {
	key := recurrence.ParseOccurrenceKey(strings.TrimSpace(id), s.Today())
	task, err := s.MarkDone(ctx, user, key)
	return task, key, err
}

// UndoByID reverses MarkDoneByID.
func (s *TaskService) UndoByID(ctx context.Context, user *model.User, id string) (*model.Task, recurrence.OccurrenceKey, error) {
	key := recurrence.ParseOccurrenceKey(strings.TrimSpace(id), s.Today())
	task, err := s.Undo(ctx, user, key)
	return task, key, err
}

// MarkDone records the occurrence key.Date of the task as completed by user.
// Completing an already completed occurrence replaces its record.
func (s *TaskService) MarkDone(ctx context.Context, user *model.User, key recurrence.OccurrenceKey) (*model.Task, error) {
	task, err := s.GetTask(ctx, user, key.TaskID)
	if err != nil {
		return nil, err
	}
	date := recurrence.Day(key.Date)
	if date.After(s.Today()) {
		return nil, &ValidationError{Problems: []string{"cannot complete a future occurrence"}}
	}
	if !recurrence.IsDue(*task, date) {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("task is not due on %s", recurrence.DateKey(date))}}
	}

	updated := recurrence.MarkDone(*task, date, s.now(), user.DisplayName())
	record := updated.CompletedDates[len(updated.CompletedDates)-1]
	if err := s.taskRepo.UpsertCompletion(ctx, &record); err != nil {
		return nil, err
	}
	updated.CompletedDates[len(updated.CompletedDates)-1] = record
	return &updated, nil
}

func (s *TaskService) Undo(ctx context.Context, user *model.User, key recurrence.OccurrenceKey) (*model.Task, error) {
	task, err := s.GetTask(ctx, user, key.TaskID)
	if err != nil {
		return nil, err
	}
	date := recurrence.Day(key.Date)
	removed, err := s.taskRepo.DeleteCompletion(ctx, task.ID, recurrence.DateKey(date))
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, ErrNotCompleted
	}
	updated := recurrence.Undo(*task, date)
	return &updated, nil
}

// TodayView partitions the user's tasks around today.
func (s *TaskService) TodayView(ctx context.Context, user *model.User, hidden recurrence.HiddenSet) (recurrence.Partition, error) {
	tasks, err := s.taskRepo.ListActive(ctx, user.ID)
	if err != nil {
		return recurrence.Partition{}, err
	}
	return recurrence.ClassifyHiding(tasks, s.Today(), hidden), nil
}

// Overview lists active tasks by priority with their status.
func (s *TaskService) Overview(ctx context.Context, user *model.User) ([]TaskOverview, error) {
	tasks, err := s.taskRepo.ListActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	recurrence.SortByPriority(tasks, today)

	out := make([]TaskOverview, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, TaskOverview{
			Task:     task,
			Status:   recurrence.StatusOf(task, today),
			RuleText: recurrence.RuleText(task),
		})
	}
	return out, nil
}

// History returns the calendar of the month containing month for a task.
// A zero month means the current month.
func (s *TaskService) History(ctx context.Context, user *model.User, ref string, month time.Time) (*model.Task, []recurrence.CalendarDay, error) {
	task, err := s.GetTask(ctx, user, ref)
	if err != nil {
		return nil, nil, err
	}
	today := s.Today()
	if month.IsZero() {
		month = today
	}
	return task, recurrence.MonthCalendar(*task, month, today), nil
}
