package services

import (
	"context"
	"database/sql"

	"vendorhub/internal/domain"

	"github.com/pkg/errors"
)

var ErrInvalidSelection = errors.New("selection is not an option at this level")

type CategorySource interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id string) (domain.Category, error)
	SubCategories(ctx context.Context, categoryID string) ([]domain.SubCategory, error)
	SubSubCategories(ctx context.Context, subCategoryID string) ([]domain.SubSubCategory, error)
}

// Cascade is the three-level category picker. Each level's options are loaded
// only once its parent is chosen, and changing a level clears everything below
// it. Choosing a top category also classifies it as clothing-like or not.
type Cascade struct {
	src CategorySource

	Categories       []domain.Category
	SubCategories    []domain.SubCategory
	SubSubCategories []domain.SubSubCategory

	CategoryID       string
	SubCategoryID    string
	SubSubCategoryID string

	ClothingLike bool
	ClothingType domain.ClothingType
}

func NewCascade(ctx context.Context, src CategorySource) (*Cascade, error) {
	cats, err := src.Categories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}
	return &Cascade{src: src, Categories: cats}, nil
}

// SelectCategory sets the top level; "" clears it.
func (c *Cascade) SelectCategory(ctx context.Context, id string) error {
	c.CategoryID = ""
	c.SubCategoryID, c.SubSubCategoryID = "", ""
	c.SubCategories, c.SubSubCategories = nil, nil
	c.ClothingLike = false
	c.ClothingType = ""
	if id == "" {
		return nil
	}
	cat, err := c.src.Category(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidSelection
	}
	if err != nil {
		return errors.Wrap(err, "load category")
	}
	subs, err := c.src.SubCategories(ctx, id)
	if err != nil {
		return errors.Wrap(err, "load sub-categories")
	}
	c.CategoryID = id
	c.ClothingLike = domain.IsClothingLike(cat.Name)
	c.SubCategories = subs
	return nil
}

func (c *Cascade) SelectSubCategory(ctx context.Context, id string) error {
	c.SubCategoryID, c.SubSubCategoryID = "", ""
	c.SubSubCategories = nil
	if id == "" {
		return nil
	}
	found := false
	for _, s := range c.SubCategories {
		if s.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrInvalidSelection
	}
	subsubs, err := c.src.SubSubCategories(ctx, id)
	if err != nil {
		return errors.Wrap(err, "load sub-sub-categories")
	}
	c.SubCategoryID = id
	c.SubSubCategories = subsubs
	return nil
}

func (c *Cascade) SelectSubSubCategory(id string) error {
	c.SubSubCategoryID = ""
	if id == "" {
		return nil
	}
	for _, s := range c.SubSubCategories {
		if s.ID == id {
			c.SubSubCategoryID = id
			return nil
		}
	}
	return ErrInvalidSelection
}

// SetClothingType only applies to clothing-like categories; "" clears it.
func (c *Cascade) SetClothingType(t string) error {
	c.ClothingType = ""
	if t == "" {
		return nil
	}
	if !c.ClothingLike {
		return ErrInvalidSelection
	}
	ct, ok := domain.ParseClothingType(t)
	if !ok {
		return ErrInvalidSelection
	}
	c.ClothingType = ct
	return nil
}

// Complete reports whether all three levels are chosen.
func (c *Cascade) Complete() bool {
	return c.CategoryID != "" && c.SubCategoryID != "" && c.SubSubCategoryID != ""
}

func (c *Cascade) Structure() domain.Structure { return domain.StructureFor(c.ClothingLike) }

// CascadeFromValues replays submitted selections top-down. A value that is not
// an option under its (possibly changed) parent is dropped along with
// everything below it; only source failures are returned.
func CascadeFromValues(ctx context.Context, src CategorySource, categoryID, subCategoryID, subSubCategoryID, clothingType string) (*Cascade, error) {
	c, err := NewCascade(ctx, src)
	if err != nil {
		return nil, err
	}
	steps := []func() error{
		func() error { return c.SelectCategory(ctx, categoryID) },
		func() error { return c.SelectSubCategory(ctx, subCategoryID) },
		func() error { return c.SelectSubSubCategory(subSubCategoryID) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			if errors.Is(err, ErrInvalidSelection) {
				break
			}
			return nil, err
		}
	}
	if c.ClothingLike {
		_ = c.SetClothingType(clothingType)
	}
	return c, nil
}
