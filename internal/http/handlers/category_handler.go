package handlers

import (
	"vendorhub/internal/domain"
	"vendorhub/internal/log"
	"vendorhub/internal/services"
	"vendorhub/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// Home is the public landing page.
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		log.Error(c, "home.categories.fail", err, nil)
		cats = nil
	}
	data := fiber.Map{"Categories": cats}
	if u := userFrom(c); u != nil {
		data["Landing"] = services.LandingFor(u)
	}
	return render(c, "index", data)
}

// GET /api/v1/categories
func (h *CategoryHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		log.Error(c, "api.categories.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load categories"})
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// GET /api/v1/categories/:id/sub-categories
func (h *CategoryHandler) SubCategories(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}
	subs, clothing, err := h.Catalog.SubCategories(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
	}
	if err != nil {
		log.Error(c, "api.sub_categories.fail", err, map[string]any{"category_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load sub-categories"})
	}
	if subs == nil {
		subs = []domain.SubCategory{}
	}
	return c.JSON(fiber.Map{"sub_categories": subs, "clothing_like": clothing})
}

// GET /api/v1/sub-categories/:id/sub-sub-categories
func (h *CategoryHandler) SubSubCategories(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "sub_category"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sub-category id"})
	}
	subs, err := h.Catalog.SubSubCategories(c.UserContext(), id)
	if err != nil {
		log.Error(c, "api.sub_sub_categories.fail", err, map[string]any{"sub_category_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load sub-sub-categories"})
	}
	if subs == nil {
		subs = []domain.SubSubCategory{}
	}
	return c.JSON(fiber.Map{"sub_sub_categories": subs})
}
