package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"today-i-need/internal/model"
)

// TaskRepository handles CRUD for tasks and their completion records.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit("CompletedDates").Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListActive returns the user's tasks that are not soft-deleted, each with
// its completion records.
func (r *TaskRepository) ListActive(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("CompletedDates").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID uint, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("CompletedDates").
		Where("user_id = ? AND id = ? AND is_active = ?", userID, taskID, true).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByPrefix returns at most limit active tasks whose id starts with prefix.
func (r *TaskRepository) FindByPrefix(ctx context.Context, userID uint, prefix string, limit int) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("CompletedDates").
		Where("user_id = ? AND is_active = ? AND id LIKE ?", userID, true, prefix+"%").
		Order("id ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update saves task fields; completion records are left untouched.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a task; its completion history is kept.
func (r *TaskRepository) Deactivate(ctx context.Context, userID uint, taskID string) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND id = ? AND is_active = ?", userID, taskID, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertCompletion stores c as the only completion of its task on c.Date.
func (r *TaskRepository) UpsertCompletion(ctx context.Context, c *model.Completion) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ? AND date = ?", c.TaskID, c.Date).
			Delete(&model.Completion{}).Error; err != nil {
			return err
		}
		c.ID = 0
		return tx.Create(c).Error
	})
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

// DeleteCompletion removes every completion of taskID on date and reports
// how many rows were removed.
func (r *TaskRepository) DeleteCompletion(ctx context.Context, taskID, date string) (int64, error) {
	res := r.db.WithContext(ctx).Where("task_id = ? AND date = ?", taskID, date).Delete(&model.Completion{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete completion: %w", res.Error)
	}
	return res.RowsAffected, nil
}
