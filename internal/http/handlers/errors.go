package handlers

import (
	applog "vendorhub/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const genericFailure = "Something went wrong. Please try again."

// ErrorHandler is the app-wide fallback for errors returned by handlers.
// Internal error text is logged, never rendered.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := genericFailure
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch {
		case fe.Code == fiber.StatusRequestEntityTooLarge:
			status, msg = fe.Code, "Your upload is too large."
		case fe.Code == fiber.StatusNotFound:
			status, msg = fe.Code, "Page not found"
		case fe.Code < fiber.StatusInternalServerError:
			status, msg = fe.Code, "We could not process that request."
		}
	}
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Security(c, "request.rejected", map[string]any{"status": status})
	}
	if rerr := c.Status(status).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}

// CSRFFailed renders the csrf middleware's rejection.
func CSRFFailed(c *fiber.Ctx, err error) error {
	applog.Security(c, "csrf.fail", nil)
	return renderStatus(c, fiber.StatusForbidden, "notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
}
