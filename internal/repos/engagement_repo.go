package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// LowStockThreshold marks products with fewer units than this as low stock.
const LowStockThreshold = 5

type VendorStats struct {
	Total     int `db:"total"`
	Approved  int `db:"approved"`
	Pending   int `db:"pending"`
	LowStock  int `db:"low_stock"`
	Likes     int `db:"likes"`
	CartUnits int `db:"cart_units"`
}

type CartActivity struct {
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Quantity  int    `db:"quantity"`
	CreatedAt string `db:"created_at"`
}

// EngagementRepo reads shopper activity (cart, liked_products) on a vendor's products.
type EngagementRepo struct{ db *sqlx.DB }

func NewEngagementRepo(db *sqlx.DB) *EngagementRepo { return &EngagementRepo{db: db} }

func (r *EngagementRepo) VendorStats(ctx context.Context, owner string) (VendorStats, error) {
	var s VendorStats
	err := r.db.GetContext(ctx, &s, `
  SELECT
    COUNT(*) AS total,
    COALESCE(SUM(CASE WHEN approved = 1 THEN 1 ELSE 0 END),0) AS approved,
    COALESCE(SUM(CASE WHEN approved = 0 THEN 1 ELSE 0 END),0) AS pending,
    COALESCE(SUM(CASE WHEN CAST(json_extract(details,'$.stock_quantity') AS INTEGER) < ? THEN 1 ELSE 0 END),0) AS low_stock,
    (SELECT COUNT(*) FROM liked_products l JOIN products lp ON lp.product_id = l.product_id WHERE lp.uploaded_by = ?) AS likes,
    (SELECT COALESCE(SUM(c.quantity),0) FROM cart c JOIN products cp ON cp.product_id = c.product_id WHERE cp.uploaded_by = ?) AS cart_units
  FROM products
  WHERE uploaded_by = ?`, LowStockThreshold, owner, owner, owner)
	return s, err
}

func (r *EngagementRepo) RecentCartActivity(ctx context.Context, owner string, limit int) ([]CartActivity, error) {
	var out []CartActivity
	err := r.db.SelectContext(ctx, &out, `
  SELECT c.product_id,
         COALESCE(json_extract(p.details,'$.name'),'') AS name,
         c.quantity,
         COALESCE(c.created_at,'') AS created_at
  FROM cart c
  JOIN products p ON p.product_id = c.product_id
  WHERE p.uploaded_by = ?
  ORDER BY c.created_at DESC, c.id DESC
  LIMIT ?`, owner, limit)
	return out, err
}
