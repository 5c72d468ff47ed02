package repositories

import (
	"context"

	"github.com/SscSPs/budget_engine/internal/core/domain"
)

// CategoryReader defines read-only access to categories.
type CategoryReader interface {
	// FindCategoryByID retrieves a category by id.
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// FindCategoriesByIDs retrieves categories keyed by id; unknown ids are omitted.
	FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error)

	// ListCategories lists all categories.
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
