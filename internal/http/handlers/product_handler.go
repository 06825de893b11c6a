package handlers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"vendorhub/internal/domain"
	"vendorhub/internal/log"
	"vendorhub/internal/services"
	"vendorhub/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const discountRows = 3

type ProductHandler struct {
	Products *services.ProductService
	Catalog  *services.CatalogService
}

func first(vals map[string][]string, key string) string {
	if v := vals[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func productFormFrom(mf *multipart.Form) services.ProductForm {
	v := mf.Value
	f := services.ProductForm{
		CategoryID:       first(v, "category"),
		SubCategoryID:    first(v, "sub_category"),
		SubSubCategoryID: first(v, "sub_sub_category"),
		ClothingType:     first(v, "clothing_type"),
		Name:             first(v, "name"),
		Price:            first(v, "price"),
		Description:      first(v, "description"),
		Stock:            first(v, "stock_quantity"),
		Disclaimer:       first(v, "disclaimer"),
		Colors:           v["color"],
	}
	prices, weights, pcts := v["discount_price"], v["discount_weight"], v["discount_percentage"]
	for i := range prices {
		t := domain.DiscountTier{Price: prices[i]}
		if i < len(weights) {
			t.Weight = weights[i]
		}
		if i < len(pcts) {
			t.DiscountPercentage = pcts[i]
		}
		f.Discounts = append(f.Discounts, t)
	}
	return f
}

// uploadsFrom keeps the non-empty file parts. colors[i] belongs to files[i],
// so the swatch of a skipped part is dropped with it.
func uploadsFrom(files []*multipart.FileHeader, colors []string) ([]services.Upload, []string) {
	var (
		out  []services.Upload
		kept []string
	)
	for i, fh := range files {
		if fh.Filename == "" || fh.Size == 0 {
			continue
		}
		out = append(out, services.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
		if i < len(colors) {
			kept = append(kept, colors[i])
		}
	}
	return out, kept
}

// discountSlots pads tiers to the fixed number of rows in the form.
func discountSlots(tiers []domain.DiscountTier) []domain.DiscountTier {
	out := append([]domain.DiscountTier(nil), tiers...)
	for len(out) < discountRows {
		out = append(out, domain.DiscountTier{})
	}
	return out
}

func (h *ProductHandler) renderUpload(c *fiber.Ctx, status int, f services.ProductForm, errMsg string) error {
	cascade, err := services.CascadeFromValues(c.UserContext(), h.Catalog.Categories, f.CategoryID, f.SubCategoryID, f.SubSubCategoryID, f.ClothingType)
	if err != nil {
		log.Error(c, "product.form.cascade.fail", err, nil)
		return redirectWithNotice(c, "/dashboard", NoticeError, "Could not load categories. Please try again.")
	}
	return renderStatus(c, status, "product_upload", fiber.Map{
		"Err":           errMsg,
		"Form":          f,
		"Cascade":       cascade,
		"ClothingTypes": domain.ClothingTypes,
		"Discounts":     discountSlots(f.Discounts),
		"DefaultColor":  domain.DefaultImageColor,
	})
}

// GET /dashboard/product-upload
func (h *ProductHandler) UploadForm(c *fiber.Ctx) error {
	f := services.ProductForm{
		CategoryID:       c.Query("category"),
		SubCategoryID:    c.Query("sub_category"),
		SubSubCategoryID: c.Query("sub_sub_category"),
		ClothingType:     c.Query("clothing_type"),
	}
	return h.renderUpload(c, fiber.StatusOK, f, "")
}

// POST /dashboard/product-upload
func (h *ProductHandler) Upload(c *fiber.Ctx) error {
	mf, err := c.MultipartForm()
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"form": "product", "reason": "not_multipart"})
		return h.renderUpload(c, fiber.StatusBadRequest, services.ProductForm{}, "Please submit the form with your product images.")
	}
	f := productFormFrom(mf)
	images, colors := uploadsFrom(mf.File["images"], f.Colors)
	f.Colors = colors

	p, err := h.Products.Create(c.UserContext(), userIDFrom(c), f, images)
	if err != nil {
		if fe, ok := services.AsFormError(err); ok {
			log.Security(c, "validation.fail", map[string]any{"form": "product", "field": fe.Field})
			return h.renderUpload(c, fiber.StatusBadRequest, f, fe.Message)
		}
		action := "product.create.fail"
		if errors.Is(err, services.ErrUploadFailed) {
			action = "product.upload.fail"
		}
		log.Error(c, action, err, map[string]any{"images": len(images)})
		return h.renderUpload(c, fiber.StatusInternalServerError, f, "Failed to upload product. Please try again.")
	}

	log.Audit(c, "product.create", map[string]any{"product_id": p.ID, "structure": string(p.Structure), "images": len(images)})
	return redirectWithNotice(c, "/dashboard/product-upload", NoticeSuccess, "Product uploaded successfully and pending approval.")
}

// GET /dashboard/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	category := ""
	if raw := c.Query("category"); raw != "" {
		if id, ok := validate.ID(raw); ok {
			category = id
		} else {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
		}
	}
	q, badQuery := "", false
	if raw := strings.TrimSpace(c.Query("q")); raw != "" {
		if s, ok := validate.Q(raw); ok {
			q = s
		} else {
			badQuery = true
			log.Security(c, "validation.fail", map[string]any{"field": "q"})
		}
	}
	view := c.Query("view", "grid")
	if view != "list" {
		view = "grid"
	}

	items, err := h.Products.ListOwned(c.UserContext(), userIDFrom(c), category, q)
	if err != nil {
		log.Error(c, "product.list.fail", err, nil)
		return redirectWithNotice(c, "/dashboard", NoticeError, "Could not load your products. Please try again.")
	}
	if badQuery {
		// a filter that cannot match anything lists nothing
		items = nil
	}
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		log.Error(c, "product.list.categories.fail", err, nil)
	}
	return render(c, "product_list", fiber.Map{
		"Products":   items,
		"Categories": cats,
		"Category":   category,
		"Q":          q,
		"View":       view,
		"Grid":       view == "grid",
	})
}

// loadView fetches a product for the current user. On failure it has already
// written the redirect and returns ok=false.
func (h *ProductHandler) loadView(c *fiber.Ctx) (services.ProductView, domain.Product, bool, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return services.ProductView{}, domain.Product{}, false, notFound(c, "This product is no longer available")
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error(c, "product.read.fail", err, map[string]any{"product_id": id})
		}
		return services.ProductView{}, p, false, redirectWithNotice(c, "/dashboard/products", NoticeError, "Product not found.")
	}
	v, err := services.NewProductView(p, userIDFrom(c))
	if err != nil {
		log.Error(c, "product.decode.fail", err, map[string]any{"product_id": id})
		return v, p, false, redirectWithNotice(c, "/dashboard/products", NoticeError, "This product could not be displayed.")
	}
	return v, p, true, nil
}

func (h *ProductHandler) denyNotOwner(c *fiber.Ctx, action, id string) error {
	log.Security(c, "access.denied.product."+action, map[string]any{"product_id": id})
	return redirectWithNotice(c, "/dashboard/products", NoticeWarning, "You can only "+action+" products you uploaded.")
}

// GET /dashboard/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	v, _, ok, err := h.loadView(c)
	if !ok {
		return err
	}
	idx, _ := strconv.Atoi(c.Query("image", "0"))
	car := domain.NewCarousel(v.Images, idx)
	return render(c, "product_detail", fiber.Map{
		"P":        v,
		"Image":    car.Current(),
		"Position": car.Position(),
		"Count":    len(car.Images),
		"Next":     car.Next(),
		"Prev":     car.Prev(),
		"Multi":    len(car.Images) > 1,
	})
}

func (h *ProductHandler) renderEdit(c *fiber.Ctx, status int, v services.ProductView, f services.EditForm, errMsg string) error {
	return renderStatus(c, status, "product_edit", fiber.Map{"P": v, "Form": f, "Err": errMsg})
}

// GET /dashboard/products/edit/:id
func (h *ProductHandler) EditForm(c *fiber.Ctx) error {
	v, p, ok, err := h.loadView(c)
	if !ok {
		return err
	}
	if !v.CanMutate {
		return h.denyNotOwner(c, "edit", p.ID)
	}
	f, err := services.EditFormFor(p)
	if err != nil {
		log.Error(c, "product.decode.fail", err, map[string]any{"product_id": p.ID})
		return redirectWithNotice(c, "/dashboard/products", NoticeError, "This product could not be edited.")
	}
	return h.renderEdit(c, fiber.StatusOK, v, f, "")
}

// POST /dashboard/products/edit/:id
func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	v, p, ok, err := h.loadView(c)
	if !ok {
		return err
	}
	if !v.CanMutate {
		return h.denyNotOwner(c, "edit", p.ID)
	}
	f := services.EditForm{
		Name:        c.FormValue("name"),
		Price:       c.FormValue("price"),
		Description: c.FormValue("description"),
		Stock:       c.FormValue("stock_quantity"),
	}
	err = h.Products.Update(c.UserContext(), userIDFrom(c), p.ID, f)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotOwner):
		return h.denyNotOwner(c, "edit", p.ID)
	case errors.Is(err, services.ErrNotFound):
		return redirectWithNotice(c, "/dashboard/products", NoticeError, "Product not found.")
	default:
		if fe, ok := services.AsFormError(err); ok {
			log.Security(c, "validation.fail", map[string]any{"form": "product_edit", "field": fe.Field})
			return h.renderEdit(c, fiber.StatusBadRequest, v, f, fe.Message)
		}
		log.Error(c, "product.update.fail", err, map[string]any{"product_id": p.ID})
		return h.renderEdit(c, fiber.StatusInternalServerError, v, f, "Failed to update product. Please try again.")
	}
	log.Audit(c, "product.update", map[string]any{"product_id": p.ID})
	return redirectWithNotice(c, "/dashboard/products/"+p.ID, NoticeSuccess, "Product updated.")
}

// GET /dashboard/products/:id/delete asks for confirmation.
func (h *ProductHandler) DeleteConfirm(c *fiber.Ctx) error {
	v, p, ok, err := h.loadView(c)
	if !ok {
		return err
	}
	if !v.CanMutate {
		return h.denyNotOwner(c, "delete", p.ID)
	}
	return render(c, "product_delete", fiber.Map{"P": v})
}

// POST /dashboard/products/:id/delete deletes only with confirm=yes.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This product is no longer available")
	}
	if c.FormValue("confirm") != "yes" {
		return c.Redirect("/dashboard/products/" + id + "/delete")
	}
	err := h.Products.Delete(c.UserContext(), userIDFrom(c), id)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotOwner):
		return h.denyNotOwner(c, "delete", id)
	case errors.Is(err, services.ErrNotFound):
		return redirectWithNotice(c, "/dashboard/products", NoticeError, "Product not found.")
	default:
		log.Error(c, "product.delete.fail", err, map[string]any{"product_id": id})
		return redirectWithNotice(c, "/dashboard/products", NoticeError, "Failed to delete product. Please try again.")
	}
	log.Audit(c, "product.delete", map[string]any{"product_id": id})
	return redirectWithNotice(c, "/dashboard/products", NoticeSuccess, "Product deleted.")
}
