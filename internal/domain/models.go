package domain

import "strings"

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"-"`
}

type SubCategory struct {
	ID         string `db:"id" json:"id"`
	CategoryID string `db:"category_id" json:"category_id"`
	Name       string `db:"name" json:"name"`
}

type SubSubCategory struct {
	ID            string `db:"id" json:"id"`
	SubCategoryID string `db:"sub_category_id" json:"sub_category_id"`
	Name          string `db:"name" json:"name"`
}

var clothingMarkers = []string{"cloth", "apparel", "wear", "fashion"}

// IsClothingLike reports whether a top-level category name selects the
// clothing product shape.
func IsClothingLike(name string) bool {
	n := strings.ToLower(name)
	for _, m := range clothingMarkers {
		if strings.Contains(n, m) {
			return true
		}
	}
	return false
}
