package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vendorhub/internal/domain"
)

func TestIsClothingLike(t *testing.T) {
	for name, want := range map[string]bool{
		"Clothing":        true,
		"Footwear":        true,
		"Women's Apparel": true,
		"Fashion":         true,
		"Electronics":     false,
		"Home & Kitchen":  false,
	} {
		assert.Equal(t, want, domain.IsClothingLike(name), name)
	}
}

func TestStructureFor(t *testing.T) {
	assert.Equal(t, domain.StructureClothing, domain.StructureFor(true))
	assert.Equal(t, domain.StructureGeneric, domain.StructureFor(false))
}

func TestParseClothingType(t *testing.T) {
	ct, ok := domain.ParseClothingType("Kids")
	assert.True(t, ok)
	assert.Equal(t, domain.ClothingKids, ct)

	_, ok = domain.ParseClothingType("kids")
	assert.False(t, ok)
}

func TestParseApproval(t *testing.T) {
	a, ok := domain.ParseApproval("Rejected")
	assert.True(t, ok)
	assert.Equal(t, domain.ApprovalRejected, a)

	_, ok = domain.ParseApproval("Maybe")
	assert.False(t, ok)
}

func TestCanMutate(t *testing.T) {
	p := domain.Product{UploadedBy: "u-1"}
	assert.True(t, domain.CanMutate("u-1", p))
	assert.False(t, domain.CanMutate("u-2", p))
	assert.False(t, domain.CanMutate("", domain.Product{}))
}

func TestCarouselWraps(t *testing.T) {
	imgs := []string{"/a", "/b", "/c"}

	c := domain.NewCarousel(imgs, 0)
	assert.Equal(t, "/a", c.Current())
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Prev())
	assert.Equal(t, 1, c.Position())

	c = domain.NewCarousel(imgs, 2)
	assert.Equal(t, 0, c.Next())

	c = domain.NewCarousel(imgs, 7)
	assert.Equal(t, "/b", c.Current())

	c = domain.NewCarousel(imgs, -1)
	assert.Equal(t, "/c", c.Current())

	c = domain.NewCarousel(nil, 3)
	assert.Equal(t, domain.PlaceholderImage, c.Current())
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 0, c.Prev())
}
