package services

import (
	"strconv"

	"vendorhub/internal/domain"
)

// ProductView is a decoded product ready for templates.
type ProductView struct {
	ID           string
	Name         string
	Price        float64
	PriceText    string
	Description  string
	Disclaimer   string
	Stock        int
	Approved     bool
	Structure    domain.Structure
	ClothingType string
	CategoryID   string
	Images       []string
	Swatches     []domain.ColorImage
	Thumb        string
	Discounts    []domain.DiscountTier
	CanMutate    bool
	CreatedAt    string
}

// NewProductView decodes p by its structure tag. CanMutate is computed for viewer.
func NewProductView(p domain.Product, viewer string) (ProductView, error) {
	d, err := p.Details()
	if err != nil {
		return ProductView{}, err
	}
	tiers, err := p.Discounts()
	if err != nil {
		return ProductView{}, err
	}
	c := d.Common()
	v := ProductView{
		ID:          p.ID,
		Name:        c.Name,
		Price:       c.Price,
		PriceText:   formatPrice(c.Price),
		Description: c.Description,
		Disclaimer:  c.Disclaimer,
		Stock:       c.StockQuantity,
		Approved:    p.Approved,
		Structure:   p.Structure,
		CategoryID:  p.CategoryID,
		Images:      domain.NormalizeImages(d),
		Discounts:   tiers,
		CanMutate:   domain.CanMutate(viewer, p),
		CreatedAt:   p.CreatedAt,
	}
	if p.Type.Valid {
		v.ClothingType = p.Type.String
	}
	if cd, ok := d.(domain.ClothingDetails); ok {
		v.Swatches = cd.ImageURL
	}
	v.Thumb = v.Images[0]
	return v, nil
}

func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
