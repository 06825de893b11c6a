package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const noticeCookie = "notice"

// Notice kinds, used as CSS modifiers.
const (
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

type Notice struct {
	Kind    string
	Message string
}

// setNotice stores a one-shot message shown by the next rendered page.
func setNotice(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     noticeCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

func takeNotice(c *fiber.Ctx) *Notice {
	raw := c.Cookies(noticeCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     noticeCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	dec, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(dec, "|")
	if !ok || msg == "" {
		return nil
	}
	switch kind {
	case NoticeSuccess, NoticeWarning, NoticeError:
	default:
		kind = NoticeError
	}
	return &Notice{Kind: kind, Message: msg}
}

// redirectWithNotice is the navigate-away path for failed reads and denied mutations.
func redirectWithNotice(c *fiber.Ctx, to, kind, msg string) error {
	setNotice(c, kind, msg)
	return c.Redirect(to)
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if _, ok := data["Notice"]; !ok {
		if n := takeNotice(c); n != nil {
			data["Notice"] = n
		}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok, _ = c.Locals("csrf").(string)
	}
	if tok == "" {
		// Fallback: the CSRF cookie carries the same token
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": msg})
}
