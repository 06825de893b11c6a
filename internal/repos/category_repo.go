package repos

import (
	"context"

	"vendorhub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, name, COALESCE(created_at,'') AS created_at
  FROM categories
  ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Category(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT id, name, COALESCE(created_at,'') AS created_at FROM categories WHERE id = ?`, id)
	return c, err
}

func (r *CategoryRepo) SubCategories(ctx context.Context, categoryID string) ([]domain.SubCategory, error) {
	var out []domain.SubCategory
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, category_id, name
  FROM sub_categories
  WHERE category_id = ?
  ORDER BY name`, categoryID)
	return out, err
}

func (r *CategoryRepo) SubSubCategories(ctx context.Context, subCategoryID string) ([]domain.SubSubCategory, error) {
	var out []domain.SubSubCategory
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, sub_category_id, name
  FROM sub_sub_categories
  WHERE sub_category_id = ?
  ORDER BY name`, subCategoryID)
	return out, err
}
