package domain

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Structure discriminates the shape of details.image_url.
type Structure string

const (
	StructureGeneric  Structure = "structure_1" // image_url: []string
	StructureClothing Structure = "structure_2" // image_url: []{url,color}
)

func StructureFor(clothingLike bool) Structure {
	if clothingLike {
		return StructureClothing
	}
	return StructureGeneric
}

type ClothingType string

const (
	ClothingMen         ClothingType = "Men"
	ClothingWomen       ClothingType = "Women"
	ClothingKids        ClothingType = "Kids"
	ClothingAccessories ClothingType = "Accessories"
)

var ClothingTypes = []ClothingType{ClothingMen, ClothingWomen, ClothingKids, ClothingAccessories}

func ParseClothingType(s string) (ClothingType, bool) {
	for _, t := range ClothingTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// DefaultImageColor is used for clothing images until the vendor picks a swatch.
const DefaultImageColor = "#FFFFFF"

// PlaceholderImage is shown when a product has no images.
const PlaceholderImage = "/static/placeholder.svg"

type DiscountTier struct {
	Price              string `json:"price"`
	Weight             string `json:"weight"`
	DiscountPercentage string `json:"discount_percentage"`
}

func (d DiscountTier) Complete() bool {
	return strings.TrimSpace(d.Price) != "" &&
		strings.TrimSpace(d.Weight) != "" &&
		strings.TrimSpace(d.DiscountPercentage) != ""
}

// CompactDiscounts drops tiers with a blank field. It returns nil, never an
// empty slice, when nothing is left.
func CompactDiscounts(in []DiscountTier) []DiscountTier {
	var out []DiscountTier
	for _, d := range in {
		if d.Complete() {
			out = append(out, d)
		}
	}
	return out
}

type Product struct {
	ID               string         `db:"product_id"`
	Approved         bool           `db:"approved"`
	UploadedBy       string         `db:"uploaded_by"`
	Structure        Structure      `db:"structure"`
	Type             sql.NullString `db:"type"`
	CategoryID       string         `db:"category_id"`
	SubCategoryID    string         `db:"sub_category_id"`
	SubSubCategoryID string         `db:"sub_sub_category_id"`
	DiscountJSON     sql.NullString `db:"discount"`
	DetailsJSON      string         `db:"details"`
	ImageJSON        string         `db:"image"`
	CreatedAt        string         `db:"created_at"`
	UpdatedAt        string         `db:"updated_at"`
}

func (p Product) Details() (ProductDetails, error) {
	return DecodeDetails(p.Structure, []byte(p.DetailsJSON))
}

func (p Product) Discounts() ([]DiscountTier, error) {
	if !p.DiscountJSON.Valid || p.DiscountJSON.String == "" {
		return nil, nil
	}
	var out []DiscountTier
	if err := json.Unmarshal([]byte(p.DiscountJSON.String), &out); err != nil {
		return nil, errors.Wrap(err, "decode discount")
	}
	return out, nil
}

// CanMutate is the single ownership check for edit and delete.
func CanMutate(userID string, p Product) bool {
	return userID != "" && p.UploadedBy == userID
}
