package handlers

import (
	"path"
	"strings"

	"vendorhub/internal/domain"
	applog "vendorhub/internal/log"
	"vendorhub/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type MediaHandler struct {
	Store *storage.Store
}

// GET /media/:bucket/*
// Product images are public. Vendor documents are visible to their owner and admins.
func (h *MediaHandler) Serve(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	key := c.Params("*")
	rawLower := strings.ToLower(key)
	// Block encoded traversal attempts as well as raw .. or null bytes
	if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
		applog.Security(c, "media.traversal.block", map[string]any{"path": key})
		return c.SendStatus(fiber.StatusNotFound)
	}
	clean := path.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "/") || strings.Contains(clean, "..") {
		applog.Security(c, "media.traversal.block", map[string]any{"path": key})
		return c.SendStatus(fiber.StatusNotFound)
	}

	switch bucket {
	case storage.BucketProducts:
	case storage.BucketVendorDocuments:
		u := userFrom(c)
		if u == nil || (u.Role != domain.RoleAdmin && !strings.HasPrefix(clean, u.ID+"/")) {
			applog.Security(c, "access.denied.media", map[string]any{"bucket": bucket, "path": clean})
			return c.SendStatus(fiber.StatusNotFound)
		}
	default:
		return c.SendStatus(fiber.StatusNotFound)
	}

	obj, err := h.Store.Open(c.UserContext(), bucket, clean)
	if errors.Is(err, storage.ErrNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		applog.Error(c, "media.read.fail", err, map[string]any{"bucket": bucket, "path": clean})
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if obj.ContentType != "" {
		c.Set(fiber.HeaderContentType, obj.ContentType)
	}
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.SendStream(obj, int(obj.Size))
}
