// Package routes registers the HTTP API on the router.
package routes

import (
	"time"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/controllers"
	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/services"
	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/pkg/auth"
	"github.com/nutrieve/nutrieve/pkg/ctx"
	"github.com/nutrieve/nutrieve/pkg/mail"
	"github.com/nutrieve/nutrieve/pkg/middleware"
	"github.com/nutrieve/nutrieve/pkg/rbac"
	"github.com/nutrieve/nutrieve/pkg/router"
)

// Deps are the collaborators the API needs.
type Deps struct {
	DB          *gorm.DB
	Tokens      *auth.TokenManager
	Mailer      *mail.Mailer
	FrontendURL string
}

func RegisterAPI(r *router.Router, d Deps) {
	authService := services.NewAuthService(d.DB, d.Tokens, d.Mailer)

	authCtl := controllers.NewAuthController(authService)
	products := controllers.NewProductController(services.NewProductService(d.DB))
	cart := controllers.NewCartController(services.NewCartService(d.DB))
	orders := controllers.NewOrderController(
		services.NewCheckoutService(d.DB, d.Mailer, d.FrontendURL),
		services.NewAddressService(d.DB),
	)
	leads := controllers.NewLeadController(services.NewLeadService(d.DB))

	requireAuth := middleware.Auth(authService)
	api := r.Group("/api")

	// Auth
	authLimit := middleware.RateLimit("auth", config.Int("RATE_LIMIT_AUTH_PER_MINUTE", 20), time.Minute)
	a := api.Group("/auth")
	a.Post("/signup", "auth.signup", ctx.Wrap(authCtl.Signup), authLimit)
	a.Post("/login", "auth.login", ctx.Wrap(authCtl.Login), authLimit)
	a.Post("/forgot-password", "auth.forgot", ctx.Wrap(authCtl.ForgotPassword), authLimit)
	a.Post("/reset-password", "auth.reset", ctx.Wrap(authCtl.ResetPassword), authLimit)
	a.Get("/me", "auth.me", ctx.Wrap(authCtl.Me), requireAuth)

	// Catalog
	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))
	api.Post("/admin/seed-products", "admin.seed", ctx.Wrap(products.Seed), requireAuth, rbac.HasRole(models.RoleAdmin))

	// Cart
	c := api.Group("/cart", requireAuth)
	c.Get("/", "cart.index", ctx.Wrap(cart.Index))
	c.Post("/add", "cart.add", ctx.Wrap(cart.Add))
	c.Delete("/clear", "cart.clear", ctx.Wrap(cart.Clear))
	c.Put("/{id}", "cart.update", ctx.Wrap(cart.Update))
	c.Delete("/{id}", "cart.remove", ctx.Wrap(cart.Remove))

	// Orders and addresses
	o := api.Group("/orders", requireAuth)
	o.Post("/addresses", "addresses.store", ctx.Wrap(orders.StoreAddress))
	o.Get("/addresses", "addresses.index", ctx.Wrap(orders.Addresses))
	o.Put("/addresses/{id}/default", "addresses.default", ctx.Wrap(orders.SetDefaultAddress))
	o.Post("/create", "orders.store", ctx.Wrap(orders.Store))
	o.Get("/", "orders.index", ctx.Wrap(orders.Index))
	o.Get("/{id}", "orders.show", ctx.Wrap(orders.Show))

	// CRM
	l := api.Group("/leads", requireAuth, rbac.HasRole(models.RoleAdmin, models.RoleCRM))
	l.Get("/", "leads.index", ctx.Wrap(leads.Index))
	l.Post("/", "leads.store", ctx.Wrap(leads.Store))
	l.Get("/{id}", "leads.show", ctx.Wrap(leads.Show))
	l.Put("/{id}", "leads.update", ctx.Wrap(leads.Update))
	l.Patch("/{id}", "leads.patch", ctx.Wrap(leads.Update))
	l.Delete("/{id}", "leads.destroy", ctx.Wrap(leads.Destroy))
	l.Get("/{id}/activities", "leads.activities", ctx.Wrap(leads.Activities))
	l.Post("/{id}/activities", "leads.activities.store", ctx.Wrap(leads.StoreActivity))
}
