package routes

import (
	"log/slog"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/handlers"
	"github.com/BradenHooton/shopflow/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Checkout *handlers.CheckoutHandler
	Contact  *handlers.ContactHandler
	Invoices *handlers.InvoiceHandler
	Health   *handlers.HealthHandler
}

// SessionDeps carries what the session middlewares need
type SessionDeps struct {
	Tokens   *auth.SessionTokenManager
	Cookies  auth.CookieConfig
	Sessions auth.SessionLoader
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, sessions SessionDeps, rateLimitPerMinute int, logger *slog.Logger) {
	router.Get("/health", h.Health.Health)

	router.Route("/api", func(r chi.Router) {
		r.Use(auth.LoadSession(sessions.Tokens, sessions.Cookies, logger))

		// Public catalog
		r.Get("/products", h.Products.ListProducts)
		r.Get("/products/{id}", h.Products.GetProduct)

		// Public writes, limited per client IP
		r.With(middleware.RateLimitByIP(rateLimitPerMinute)).Post("/checkout", h.Checkout.Create)
		r.With(middleware.RateLimitByIP(rateLimitPerMinute)).Post("/contact", h.Contact.Create)
		r.With(middleware.RateLimitByIP(rateLimitPerMinute)).Post("/auth/login", h.Auth.Login)
		r.With(middleware.RateLimitByIP(rateLimitPerMinute)).Post("/auth/verify", h.Auth.Verify)

		r.Get("/auth/me", h.Auth.Me)
		r.Post("/auth/logout", h.Auth.Logout)

		// Logged-in customers only
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(sessions.Sessions, logger))
			r.Get("/invoices", h.Invoices.ListInvoices)
			r.Get("/invoices/{id}", h.Invoices.GetInvoice)
			r.Get("/checkout/sessions", h.Checkout.ListSessions)
		})
	})
}
