package services

import (
	"context"
	"database/sql"

	"vendorhub/internal/domain"

	"github.com/pkg/errors"
)

// CatalogService serves the category picker's option lists.
type CatalogService struct {
	Categories CategorySource
}

func NewCatalogService(src CategorySource) *CatalogService {
	return &CatalogService{Categories: src}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Categories.Categories(ctx)
}

// SubCategories returns the children of categoryID and whether that category
// is clothing-like.
func (s *CatalogService) SubCategories(ctx context.Context, categoryID string) ([]domain.SubCategory, bool, error) {
	cat, err := s.Categories.Category(ctx, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}
	subs, err := s.Categories.SubCategories(ctx, categoryID)
	if err != nil {
		return nil, false, err
	}
	return subs, domain.IsClothingLike(cat.Name), nil
}

func (s *CatalogService) SubSubCategories(ctx context.Context, subCategoryID string) ([]domain.SubSubCategory, error) {
	return s.Categories.SubSubCategories(ctx, subCategoryID)
}

// CategoryNames maps category id to display name.
func (s *CatalogService) CategoryNames(ctx context.Context) (map[string]string, error) {
	cats, err := s.Categories.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(cats))
	for _, c := range cats {
		out[c.ID] = c.Name
	}
	return out, nil
}
