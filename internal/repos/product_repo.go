package repos

import (
	"context"

	"vendorhub/internal/domain"

	"github.com/jmoiron/sqlx"
)

const productCols = `product_id, approved, uploaded_by, structure, type, category_id, sub_category_id,
    sub_sub_category_id, discount, details, image, COALESCE(created_at,'') AS created_at, updated_at`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.db.NamedExecContext(ctx, `
  INSERT INTO products(product_id, approved, uploaded_by, structure, type, category_id, sub_category_id,
    sub_sub_category_id, discount, details, image, updated_at)
  VALUES(:product_id, :approved, :uploaded_by, :structure, :type, :category_id, :sub_category_id,
    :sub_sub_category_id, :discount, :details, :image, :updated_at)`, p)
	return err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE product_id = ?`, id)
	return p, err
}

// ListByOwner returns the owner's products, newest first, optionally scoped to one category.
func (r *ProductRepo) ListByOwner(ctx context.Context, owner, categoryID string) ([]domain.Product, error) {
	where := `uploaded_by = ?`
	args := []any{owner}
	if categoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `SELECT `+productCols+` FROM products WHERE `+where+`
  ORDER BY created_at DESC, product_id`, args...)
	return out, err
}

// UpdateDetails overwrites the details blob unconditionally.
func (r *ProductRepo) UpdateDetails(ctx context.Context, id, details, updatedAt string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET details = ?, updated_at = ? WHERE product_id = ?`, details, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ProductRepo) ListPendingApproval(ctx context.Context, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `SELECT `+productCols+` FROM products WHERE approved = 0
  ORDER BY created_at DESC LIMIT ?`, limit)
	return out, err
}

func (r *ProductRepo) SetApproved(ctx context.Context, id string, approved bool) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET approved = ? WHERE product_id = ?`, approved, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
