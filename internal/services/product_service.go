package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"vendorhub/internal/domain"
	applog "vendorhub/internal/log"
	"vendorhub/internal/repos"
	"vendorhub/internal/storage"
	"vendorhub/internal/validate"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ProductImagePrefix is the key prefix for product images in the products bucket.
const ProductImagePrefix = "product_images/"

type ProductForm struct {
	CategoryID       string
	SubCategoryID    string
	SubSubCategoryID string
	ClothingType     string

	Name        string `validate:"required,max=120" label:"Product name"`
	Price       string `validate:"required" label:"Price"`
	Description string `validate:"max=2000" label:"Description"`
	Stock       string `validate:"required" label:"Stock quantity"`
	Disclaimer  string `validate:"max=500" label:"Disclaimer"`

	Discounts []domain.DiscountTier
	// Colors[i] is the swatch for image i; blank or invalid means white.
	Colors []string
}

type EditForm struct {
	Name        string `validate:"required,max=120" label:"Product name"`
	Price       string `validate:"required" label:"Price"`
	Description string `validate:"max=2000" label:"Description"`
	Stock       string `validate:"required" label:"Stock quantity"`
}

type ProductService struct {
	Products   *repos.ProductRepo
	Categories CategorySource
	Store      ObjectStore
	Now        func() time.Time
}

func (s *ProductService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create validates the form, uploads every image concurrently and inserts the
// product. Nothing is uploaded or written unless validation passes, and
// nothing is written unless every upload succeeds.
func (s *ProductService) Create(ctx context.Context, owner string, f ProductForm, images []Upload) (*domain.Product, error) {
	cascade, err := CascadeFromValues(ctx, s.Categories, f.CategoryID, f.SubCategoryID, f.SubSubCategoryID, f.ClothingType)
	if err != nil {
		return nil, err
	}
	if !cascade.Complete() {
		return nil, formErr("category", "Please select a category, sub-category and sub-sub-category.")
	}
	if len(images) == 0 {
		return nil, formErr("images", "Please upload at least one product image.")
	}
	if cascade.ClothingLike && cascade.ClothingType == "" {
		return nil, formErr("clothing_type", "Please select a clothing type.")
	}
	if msg := validate.Struct(f); msg != "" {
		return nil, formErr("", msg)
	}
	price, ok := validate.Price(f.Price)
	if !ok {
		return nil, formErr("price", "Price must be a number of zero or more.")
	}
	stock, ok := validate.Stock(f.Stock)
	if !ok {
		return nil, formErr("stock", "Stock quantity must be a whole number of zero or more.")
	}
	for _, img := range images {
		if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
			return nil, formErr("images", "Only image files can be uploaded.")
		}
	}

	urls, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	common := domain.DetailsCommon{
		Name:          strings.TrimSpace(f.Name),
		Price:         price,
		Discount:      "no",
		Disclaimer:    strings.TrimSpace(f.Disclaimer),
		Description:   strings.TrimSpace(f.Description),
		StockQuantity: stock,
	}
	var details domain.ProductDetails
	switch cascade.Structure() {
	case domain.StructureClothing:
		imgs := make([]domain.ColorImage, len(urls))
		for i, u := range urls {
			imgs[i] = domain.ColorImage{URL: u, Color: swatch(f.Colors, i)}
		}
		details = domain.ClothingDetails{DetailsCommon: common, ImageURL: imgs}
	default:
		details = domain.GenericDetails{DetailsCommon: common, ImageURL: urls}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, errors.Wrap(err, "encode details")
	}
	imageJSON, err := json.Marshal(details.ImageValues())
	if err != nil {
		return nil, errors.Wrap(err, "encode image")
	}

	p := domain.Product{
		ID:               uuid.NewString(),
		Approved:         false,
		UploadedBy:       owner,
		Structure:        details.Structure(),
		CategoryID:       cascade.CategoryID,
		SubCategoryID:    cascade.SubCategoryID,
		SubSubCategoryID: cascade.SubSubCategoryID,
		DetailsJSON:      string(detailsJSON),
		ImageJSON:        string(imageJSON),
		UpdatedAt:        s.now().UTC().Format(time.RFC3339),
	}
	if cascade.ClothingLike {
		p.Type = sql.NullString{String: string(cascade.ClothingType), Valid: true}
	}
	if tiers := domain.CompactDiscounts(f.Discounts); tiers != nil {
		b, err := json.Marshal(tiers)
		if err != nil {
			return nil, errors.Wrap(err, "encode discount")
		}
		p.DiscountJSON = sql.NullString{String: string(b), Valid: true}
	}
	// TODO: delete the uploaded objects when this insert fails.
	if err := s.Products.Insert(ctx, p); err != nil {
		return nil, errors.Wrap(err, "insert product")
	}
	return &p, nil
}

func swatch(colors []string, i int) string {
	if i < len(colors) {
		if c, ok := validate.Color(colors[i]); ok {
			return c
		}
	}
	return domain.DefaultImageColor
}

// ImageKey names an upload: timestamp, position in the batch, original extension.
func ImageKey(ts int64, index int, name string) string {
	return fmt.Sprintf("%s%d_%d%s", ProductImagePrefix, ts, index, strings.ToLower(filepath.Ext(name)))
}

// uploadImages issues every upload at once and fails if any one fails.
// Objects already written are left in place.
func (s *ProductService) uploadImages(ctx context.Context, images []Upload) ([]string, error) {
	ts := s.now().UnixMilli()
	urls := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			key := ImageKey(ts, i, img.Name)
			rc, err := img.Open()
			if err != nil {
				return errors.Wrapf(err, "open %s", img.Name)
			}
			defer rc.Close()
			if err := s.Store.Upload(gctx, storage.BucketProducts, key, rc, img.ContentType); err != nil {
				return err
			}
			urls[i] = s.Store.PublicURL(storage.BucketProducts, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(ErrUploadFailed, "%v", err)
	}
	return urls, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Products.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// ListOwned returns the viewer's products, optionally within one category and
// filtered by a case-insensitive name substring. Rows whose details cannot be
// decoded are logged and left out.
func (s *ProductService) ListOwned(ctx context.Context, owner, categoryID, q string) ([]ProductView, error) {
	rows, err := s.Products.ListByOwner(ctx, owner, categoryID)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	views := make([]ProductView, 0, len(rows))
	for _, p := range rows {
		v, err := NewProductView(p, owner)
		if err != nil {
			applog.Error(nil, "product.decode.fail", err, map[string]any{"product_id": p.ID})
			continue
		}
		views = append(views, v)
	}
	return FilterByName(views, q), nil
}

func FilterByName(views []ProductView, q string) []ProductView {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return views
	}
	out := views[:0:0]
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Name), q) {
			out = append(out, v)
		}
	}
	return out
}

// Update writes the four editable fields back into details, keeping every
// other key. It is a blind overwrite: the last write wins.
func (s *ProductService) Update(ctx context.Context, viewer, id string, f EditForm) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutate(viewer, p) {
		return ErrNotOwner
	}
	if msg := validate.Struct(f); msg != "" {
		return formErr("", msg)
	}
	price, ok := validate.Price(f.Price)
	if !ok {
		return formErr("price", "Price must be a number of zero or more.")
	}
	stock, ok := validate.Stock(f.Stock)
	if !ok {
		return formErr("stock", "Stock quantity must be a whole number of zero or more.")
	}
	merged, err := domain.MergeDetails([]byte(p.DetailsJSON), domain.DetailsEdit{
		Name:          strings.TrimSpace(f.Name),
		Price:         price,
		Description:   strings.TrimSpace(f.Description),
		StockQuantity: stock,
	})
	if err != nil {
		return err
	}
	n, err := s.Products.UpdateDetails(ctx, id, string(merged), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductService) Delete(ctx context.Context, viewer, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutate(viewer, p) {
		return ErrNotOwner
	}
	n, err := s.Products.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EditFormFor flattens a product's details into the edit form.
func EditFormFor(p domain.Product) (EditForm, error) {
	d, err := p.Details()
	if err != nil {
		return EditForm{}, err
	}
	c := d.Common()
	return EditForm{
		Name:        c.Name,
		Price:       formatPrice(c.Price),
		Description: c.Description,
		Stock:       fmt.Sprintf("%d", c.StockQuantity),
	}, nil
}
