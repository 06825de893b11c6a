package services_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorhub/internal/domain"
	"vendorhub/internal/services"
)

type fakeCategories struct {
	cats    []domain.Category
	subs    map[string][]domain.SubCategory
	subsubs map[string][]domain.SubSubCategory
	err     error

	subCalls    []string
	subsubCalls []string
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{
		cats: []domain.Category{
			{ID: "c-cloth", Name: "Clothing"},
			{ID: "c-elec", Name: "Electronics"},
		},
		subs: map[string][]domain.SubCategory{
			"c-cloth": {{ID: "s-tops", CategoryID: "c-cloth", Name: "Tops"}},
			"c-elec":  {{ID: "s-audio", CategoryID: "c-elec", Name: "Audio"}},
		},
		subsubs: map[string][]domain.SubSubCategory{
			"s-tops":  {{ID: "ss-tee", SubCategoryID: "s-tops", Name: "T-Shirts"}},
			"s-audio": {{ID: "ss-buds", SubCategoryID: "s-audio", Name: "Earbuds"}},
		},
	}
}

func (f *fakeCategories) Categories(ctx context.Context) ([]domain.Category, error) {
	return f.cats, f.err
}

func (f *fakeCategories) Category(ctx context.Context, id string) (domain.Category, error) {
	if f.err != nil {
		return domain.Category{}, f.err
	}
	for _, c := range f.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, sql.ErrNoRows
}

func (f *fakeCategories) SubCategories(ctx context.Context, categoryID string) ([]domain.SubCategory, error) {
	f.subCalls = append(f.subCalls, categoryID)
	return f.subs[categoryID], f.err
}

func (f *fakeCategories) SubSubCategories(ctx context.Context, subCategoryID string) ([]domain.SubSubCategory, error) {
	f.subsubCalls = append(f.subsubCalls, subCategoryID)
	return f.subsubs[subCategoryID], f.err
}

func TestCascadeLoadsLevelsOnDemand(t *testing.T) {
	ctx := context.Background()
	src := newFakeCategories()
	c, err := services.NewCascade(ctx, src)
	require.NoError(t, err)
	assert.Len(t, c.Categories, 2)
	assert.Empty(t, src.subCalls)

	require.NoError(t, c.SelectCategory(ctx, "c-cloth"))
	assert.True(t, c.ClothingLike)
	assert.Equal(t, domain.StructureClothing, c.Structure())
	assert.Equal(t, []string{"c-cloth"}, src.subCalls)
	assert.Empty(t, src.subsubCalls)

	require.NoError(t, c.SelectSubCategory(ctx, "s-tops"))
	require.NoError(t, c.SelectSubSubCategory("ss-tee"))
	require.NoError(t, c.SetClothingType("Women"))
	assert.True(t, c.Complete())
	assert.Equal(t, domain.ClothingWomen, c.ClothingType)
}

func TestCascadeChangingParentClearsDescendants(t *testing.T) {
	ctx := context.Background()
	src := newFakeCategories()
	c, err := services.NewCascade(ctx, src)
	require.NoError(t, err)
	require.NoError(t, c.SelectCategory(ctx, "c-cloth"))
	require.NoError(t, c.SelectSubCategory(ctx, "s-tops"))
	require.NoError(t, c.SelectSubSubCategory("ss-tee"))
	require.NoError(t, c.SetClothingType("Men"))

	require.NoError(t, c.SelectCategory(ctx, "c-elec"))
	assert.Equal(t, "c-elec", c.CategoryID)
	assert.Empty(t, c.SubCategoryID)
	assert.Empty(t, c.SubSubCategoryID)
	assert.Nil(t, c.SubSubCategories)
	assert.Empty(t, c.ClothingType)
	assert.False(t, c.ClothingLike)
	assert.Equal(t, domain.StructureGeneric, c.Structure())
	assert.Equal(t, []domain.SubCategory{{ID: "s-audio", CategoryID: "c-elec", Name: "Audio"}}, c.SubCategories)
	assert.False(t, c.Complete())

	assert.ErrorIs(t, c.SetClothingType("Men"), services.ErrInvalidSelection)
	assert.ErrorIs(t, c.SelectSubCategory(ctx, "s-tops"), services.ErrInvalidSelection)
	assert.ErrorIs(t, c.SelectSubSubCategory("ss-buds"), services.ErrInvalidSelection)
}

func TestCascadeUnknownCategory(t *testing.T) {
	ctx := context.Background()
	c, err := services.NewCascade(ctx, newFakeCategories())
	require.NoError(t, err)
	assert.ErrorIs(t, c.SelectCategory(ctx, "c-nope"), services.ErrInvalidSelection)
	assert.Empty(t, c.CategoryID)
}

func TestCascadeFromValuesDropsInvalidBranch(t *testing.T) {
	ctx := context.Background()
	c, err := services.CascadeFromValues(ctx, newFakeCategories(), "c-elec", "s-tops", "ss-tee", "Men")
	require.NoError(t, err)
	assert.Equal(t, "c-elec", c.CategoryID)
	assert.Empty(t, c.SubCategoryID)
	assert.Empty(t, c.SubSubCategoryID)
	assert.Empty(t, c.ClothingType)

	c, err = services.CascadeFromValues(ctx, newFakeCategories(), "c-cloth", "s-tops", "ss-tee", "Robots")
	require.NoError(t, err)
	assert.True(t, c.Complete())
	assert.Empty(t, c.ClothingType)
}

func TestCascadeSourceFailure(t *testing.T) {
	src := newFakeCategories()
	src.err = errors.New("db down")
	_, err := services.CascadeFromValues(context.Background(), src, "c-elec", "", "", "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidSelection)
}
