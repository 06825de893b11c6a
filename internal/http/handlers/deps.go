package handlers

import (
	"time"

	"vendorhub/internal/config"
	applog "vendorhub/internal/log"
	"vendorhub/internal/repos"
	"vendorhub/internal/services"
	"vendorhub/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth     *services.AuthService
	Hub      *services.SessionHub
	Resolver *services.SessionResolver
	Gate     *services.Gate
	Users    *repos.UserRepo

	AuthHandler      *AuthHandler
	ApprovalHandler  *ApprovalHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	DashboardHandler *DashboardHandler
	AdminHandler     *AdminHandler
	MediaHandler     *MediaHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store *storage.Store) *Deps {
	userRepo := repos.NewUserRepo(db)
	sessRepo := repos.NewSessionRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	engRepo := repos.NewEngagementRepo(db)

	hub := services.NewSessionHub()
	authSvc := &services.AuthService{Users: userRepo, Sessions: sessRepo, Docs: store, Hub: hub, TTL: cfg.SessionTTL}
	resolver := &services.SessionResolver{
		Sessions: authSvc,
		Hub:      hub,
		OnError: func(err error) {
			applog.Error(nil, "session.resolve.fail", err, nil)
		},
	}
	gate := &services.Gate{Users: userRepo}
	watcher := &services.ApprovalWatcher{
		Users:    userRepo,
		Interval: cfg.ApprovalPollInterval,
		OnError: func(err error) {
			applog.Error(nil, "approval.poll.fail", err, nil)
		},
	}
	catalogSvc := services.NewCatalogService(catRepo)
	productSvc := &services.ProductService{Products: prodRepo, Categories: catRepo, Store: store}

	return &Deps{
		Auth:     authSvc,
		Hub:      hub,
		Resolver: resolver,
		Gate:     gate,
		Users:    userRepo,

		AuthHandler:      &AuthHandler{Auth: authSvc, CookieSecure: cfg.CookieSecure},
		ApprovalHandler:  &ApprovalHandler{Users: userRepo, Resolver: resolver, Watcher: watcher},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Products: productSvc, Catalog: catalogSvc},
		DashboardHandler: &DashboardHandler{Dashboard: &services.DashboardService{Engagement: engRepo}},
		AdminHandler:     &AdminHandler{Users: userRepo, Products: prodRepo},
		MediaHandler:     &MediaHandler{Store: store},
	}
}

// Mount registers every route. Global middleware (request id, csrf, AttachUser)
// is installed by the caller before Mount.
func (d *Deps) Mount(app *fiber.App) {
	authed := RequireSession(d.Resolver, services.SessionPolicy{RequireAuth: true})

	// Public pages
	app.Get("/", d.CategoryHandler.Home)
	app.Get("/not-authorized", d.AuthHandler.NotAuthorized)
	app.Get("/media/:bucket/*", d.MediaHandler.Serve)

	// Auth routes (login and signup throttled)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Get("/signup", d.AuthHandler.SignupForm)
	app.Post("/signup", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.signup.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "signup", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Signup)
	app.Post("/logout", d.AuthHandler.Logout)

	// Waiting room
	app.Get("/waiting-approval", authed, d.ApprovalHandler.Page)
	app.Get("/waiting-approval/events", authed, d.ApprovalHandler.Events)

	// API for the category picker
	api := app.Group("/api/v1", authed)
	api.Get("/categories", d.CategoryHandler.Categories)
	api.Get("/categories/:id/sub-categories", d.CategoryHandler.SubCategories)
	api.Get("/sub-categories/:id/sub-sub-categories", d.CategoryHandler.SubSubCategories)

	// Vendor dashboard
	dash := app.Group("/dashboard", authed, RequireVendor(d.Gate))
	dash.Get("/", d.DashboardHandler.Home)
	dash.Get("/product-upload", d.ProductHandler.UploadForm)
	dash.Post("/product-upload", d.ProductHandler.Upload)
	dash.Get("/products", d.ProductHandler.List)
	dash.Get("/products/edit/:id", d.ProductHandler.EditForm)
	dash.Post("/products/edit/:id", d.ProductHandler.Edit)
	dash.Get("/products/:id/delete", d.ProductHandler.DeleteConfirm)
	dash.Post("/products/:id/delete", d.ProductHandler.Delete)
	dash.Get("/products/:id", d.ProductHandler.Detail)

	// Admin
	admin := app.Group("/admin", authed, RequireAdmin(d.Users))
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Post("/vendors/:id/approval", d.AdminHandler.SetVendorApproval)
	admin.Post("/products/:id/approve", d.AdminHandler.ApproveProduct)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, "Page not found")
	})
}
