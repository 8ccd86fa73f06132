package repository

import (
	"context"

	"gorm.io/gorm"

	"today-i-need/internal/model"
)

// CategoryRepository reads the free-form category labels used on tasks.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListByUser returns the distinct categories of the user's active tasks.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND is_active = ? AND category <> ''", userID, true).
		Distinct().
		Order("category ASC").
		Pluck("category", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
