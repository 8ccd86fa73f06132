package service

import (
	"context"

	"today-i-need/internal/model"
	"today-i-need/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns the distinct categories used by the user's active tasks.
func (s *CategoryService) List(ctx context.Context, user *model.User) ([]string, error) {
	return s.repo.ListByUser(ctx, user.ID)
}
