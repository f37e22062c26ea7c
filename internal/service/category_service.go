package service

import (
	"context"
	"fmt"
	"strings"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

type categoryService struct {
	categories repository.CategoryRepository
	messages   repository.MessageRepository
	logger     *logger.Logger
}

func NewCategoryService(
	categories repository.CategoryRepository,
	messages repository.MessageRepository,
	logger *logger.Logger,
) CategoryService {
	return &categoryService{
		categories: categories,
		messages:   messages,
		logger:     logger,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, ownerID, name, description, color string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	existing, err := s.categories.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	for _, cat := range existing {
		if strings.EqualFold(cat.Name, name) {
			return nil, fmt.Errorf("category %q already exists", name)
		}
	}

	category := model.NewCategory(ownerID, name, description, color)
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) GetCategories(ctx context.Context, ownerID string) ([]*model.Category, error) {
	categories, err := s.categories.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID, ownerID, name, description, color string) (*model.Category, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	if name = strings.TrimSpace(name); name != "" {
		category.Name = name
	}
	if description != "" {
		category.Description = description
	}
	if color != "" {
		category.Color = color
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes the category; messages filed under it fall back to
// uncategorized rather than being deleted with it.
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID, ownerID string) error {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category.OwnerID != ownerID {
		return ErrForbidden
	}

	filed, err := s.messages.FindByCategoryID(ctx, categoryID)
	if err == nil {
		for _, msg := range filed {
			if err := s.messages.UpdateCategory(ctx, msg.ID, ""); err != nil {
				s.logger.Warn("Failed to detach message", msg.ID, "from category:", err)
			}
		}
	}

	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
