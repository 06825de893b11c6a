package handlers

import (
	"database/sql"

	"vendorhub/internal/domain"
	applog "vendorhub/internal/log"
	"vendorhub/internal/repos"
	"vendorhub/internal/services"
	"vendorhub/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const adminPendingLimit = 100

type AdminHandler struct {
	Users    *repos.UserRepo
	Products *repos.ProductRepo
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	vendors, err := h.Users.ListVendors(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.vendors.list.fail", err, nil)
		return renderStatus(c, fiber.StatusInternalServerError, "notfound", fiber.Map{"Message": "Could not load vendors"})
	}
	details := make(map[string]*domain.VendorDetails, len(vendors))
	for _, v := range vendors {
		vd, err := h.Users.VendorDetails(c.UserContext(), v.ID)
		switch {
		case err == nil:
			details[v.ID] = vd
		case !errors.Is(err, sql.ErrNoRows):
			applog.Error(c, "admin.vendors.details.fail", err, map[string]any{"vendor_id": v.ID})
		}
	}
	rows, err := h.Products.ListPendingApproval(c.UserContext(), adminPendingLimit)
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return renderStatus(c, fiber.StatusInternalServerError, "notfound", fiber.Map{"Message": "Could not load products"})
	}
	pending := make([]services.ProductView, 0, len(rows))
	owners := make(map[string]string, len(rows))
	for _, p := range rows {
		v, err := services.NewProductView(p, "")
		if err != nil {
			applog.Error(c, "product.decode.fail", err, map[string]any{"product_id": p.ID})
			continue
		}
		pending = append(pending, v)
		owners[p.ID] = p.UploadedBy
	}
	return render(c, "admin", fiber.Map{
		"Vendors":   vendors,
		"Details":   details,
		"Pending":   pending,
		"Owners":    owners,
		"Approvals": []domain.Approval{domain.ApprovalWaiting, domain.ApprovalAccepted, domain.ApprovalRejected},
	})
}

// POST /admin/vendors/:id/approval
func (h *AdminHandler) SetVendorApproval(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	a, okA := domain.ParseApproval(c.FormValue("approved"))
	if !okID || !okA {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin_approval"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	n, err := h.Users.SetApproval(c.UserContext(), id, a)
	if err != nil || n == 0 {
		applog.Error(c, "admin.vendors.approval.fail", err, map[string]any{"vendor_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not update vendor")
	}
	applog.Audit(c, "admin.vendors.approval", map[string]any{"vendor_id": id, "approved": string(a)})
	return redirectWithNotice(c, "/admin", NoticeSuccess, "Vendor status updated.")
}

// POST /admin/products/:id/approve
func (h *AdminHandler) ApproveProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	n, err := h.Products.SetApproved(c.UserContext(), id, true)
	if err != nil || n == 0 {
		applog.Error(c, "admin.products.approve.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not approve product")
	}
	applog.Audit(c, "admin.products.approve", map[string]any{"product_id": id})
	return redirectWithNotice(c, "/admin", NoticeSuccess, "Product approved.")
}
