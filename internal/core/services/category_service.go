package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
)

type categoryService struct {
	categoryRepo portsrepo.CategoryReader
}

// NewCategoryService creates the read-only category lookup.
func NewCategoryService(categoryRepo portsrepo.CategoryReader) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories in service: %w", err)
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.categoryRepo.FindCategoryByID(ctx, categoryID)
}
