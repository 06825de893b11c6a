package handlers

import (
	"vendorhub/internal/domain"
	applog "vendorhub/internal/log"
	"vendorhub/internal/services"

	"github.com/gofiber/fiber/v2"
)

func sessionFrom(c *fiber.Ctx) *domain.Session {
	s, _ := c.Locals("session").(*domain.Session)
	return s
}

func userFrom(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func userIDFrom(c *fiber.Ctx) string {
	if s := sessionFrom(c); s != nil {
		return s.UserID
	}
	return ""
}

// AttachUser resolves the sid cookie, when present, for templates and logs.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if s, err := auth.CurrentSession(c.UserContext(), sid); err == nil {
				c.Locals("session", s)
				c.Locals("user_id", s.UserID)
				if u, err := auth.Users.ByID(c.UserContext(), s.UserID); err == nil {
					c.Locals("user", u)
				}
			}
		}
		return c.Next()
	}
}

// RequireSession applies p to the request's session. It stores the session in
// Locals on success and redirects when p requires a session that is absent.
func RequireSession(r *services.SessionResolver, p services.SessionPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := r.Resolve(c.UserContext(), c.Cookies("sid"), p)
		if err != nil {
			applog.Error(c, "session.resolve.fail", err, nil)
		}
		if res.Redirect != "" {
			applog.Security(c, "access.denied.session", map[string]any{"redirect": res.Redirect})
			return c.Redirect(res.Redirect)
		}
		if res.Session != nil {
			c.Locals("session", res.Session)
			c.Locals("user_id", res.Session.UserID)
		}
		return c.Next()
	}
}

// RequireVendor runs the authorization gate. Compose it after RequireSession.
func RequireVendor(g *services.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := g.Decide(c.UserContext(), sessionFrom(c))
		if !d.Allow {
			applog.Security(c, "access.denied.gate", map[string]any{"reason": d.Reason, "redirect": d.Redirect})
			return c.Redirect(d.Redirect)
		}
		c.Locals("user", d.User)
		return c.Next()
	}
}

// RequireAdmin enforces role=admin. Compose it after RequireSession.
func RequireAdmin(users services.UserSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := sessionFrom(c)
		if s == nil {
			return c.Redirect("/login")
		}
		u, err := users.ByID(c.UserContext(), s.UserID)
		if err != nil || u == nil || u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": s.ID})
			return renderStatus(c, fiber.StatusForbidden, "notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
