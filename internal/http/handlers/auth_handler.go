package handlers

import (
	"io"
	"time"

	"vendorhub/internal/log"
	"vendorhub/internal/services"
	"vendorhub/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.CookieSecure,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Email": ""})
}

func (h *AuthHandler) loginFail(c *fiber.Ctx, email string, fields map[string]any) error {
	log.Security(c, "auth.login.fail", fields)
	return renderStatus(c, fiber.StatusUnauthorized, "login", fiber.Map{"Err": "Invalid email or password", "Email": email})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		return h.loginFail(c, email, map[string]any{"email": email, "reason": "bad_format"})
	}
	if !validate.Password(pass) {
		return h.loginFail(c, email, map[string]any{"email": email, "reason": "bad_password_format"})
	}

	u, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if err != nil {
		if !errors.Is(err, services.ErrBadCreds) {
			log.Error(c, "auth.login.error", err, map[string]any{"email": email})
		}
		return h.loginFail(c, email, map[string]any{"email": email})
	}

	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "approved": string(u.Approved)})
	return c.Redirect(services.LandingFor(u))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/login")
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Err": "", "Form": services.SignupInput{}})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	in := services.SignupInput{
		Name:      c.FormValue("name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		Password:  c.FormValue("password"),
		Terms:     c.FormValue("terms") == "on" || c.FormValue("terms") == "yes",
		Optional1: c.FormValue("optional_1"),
		Optional2: c.FormValue("optional_2"),
	}
	var doc *services.Upload
	if fh, err := c.FormFile("document"); err == nil && fh.Filename != "" && fh.Size > 0 {
		doc = &services.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		}
	}

	u, err := h.Auth.SignUp(c.UserContext(), sid, in, doc)
	if err != nil {
		in.Password = ""
		data := fiber.Map{"Form": in}
		status := fiber.StatusInternalServerError
		if fe, ok := services.AsFormError(err); ok {
			status = fiber.StatusBadRequest
			data["Err"] = fe.Message
			log.Security(c, "validation.fail", map[string]any{"form": "signup", "field": fe.Field})
		} else if errors.Is(err, services.ErrEmailTaken) {
			status = fiber.StatusConflict
			data["Err"] = "An account with this email already exists."
			log.Security(c, "auth.signup.duplicate", map[string]any{"email": in.Email})
		} else if errors.Is(err, services.ErrUploadFailed) {
			data["Err"] = "We could not upload your document. Please try again."
			log.Error(c, "auth.signup.upload.fail", err, map[string]any{"email": in.Email})
		} else {
			data["Err"] = "Sign up failed. Please try again."
			log.Error(c, "auth.signup.fail", err, map[string]any{"email": in.Email})
		}
		return renderStatus(c, status, "signup", data)
	}

	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.signup.success", map[string]any{"email": u.Email})
	return c.Redirect(services.PathWaitingApproval)
}

// NotAuthorized is shown to approved accounts whose role may not use the dashboard.
func (h *AuthHandler) NotAuthorized(c *fiber.Ctx) error {
	return renderStatus(c, fiber.StatusForbidden, "not_authorized", fiber.Map{})
}
