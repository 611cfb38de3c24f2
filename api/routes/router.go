package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mateovidal/catalogbase-backend/api/controllers"
	"github.com/mateovidal/catalogbase-backend/api/middleware"
	authsvc "github.com/mateovidal/catalogbase-backend/internal/auth"
	"github.com/mateovidal/catalogbase-backend/internal/catalogs"
	"github.com/mateovidal/catalogbase-backend/internal/categories"
	"github.com/mateovidal/catalogbase-backend/internal/onboarding"
	"github.com/mateovidal/catalogbase-backend/internal/products"
	"github.com/mateovidal/catalogbase-backend/internal/storefront"
	"github.com/mateovidal/catalogbase-backend/internal/webhooks/payments"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/metrics"
)

// NewRouter wires the HTTP surface. limiter may be nil (Redis unconfigured),
// which disables the auth throttles rather than failing bootstrap.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	limiter middleware.SlidingWindowStore,
	authMetrics *metrics.AuthMetrics,
	authService *authsvc.Service,
	catalogService *catalogs.Service,
	onboardingService *onboarding.Service,
	categoryService *categories.Service,
	productService *products.Service,
	storefrontService *storefront.Service,
	paymentsWebhook *payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginLimit := middleware.AuthRateLimit(
		"login", cfg.AuthRateLimit.LoginLimit, cfg.AuthRateLimit,
		limiter, middleware.IdentityEmail, authMetrics, logg,
	)
	signupLimit := middleware.AuthRateLimit(
		"signup", cfg.AuthRateLimit.SignupLimit, cfg.AuthRateLimit,
		limiter, middleware.IdentityIP, authMetrics, logg,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(dbP, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", controllers.Signup(authService, logg))
		r.With(loginLimit).Post("/login", controllers.Login(authService, logg))
		r.Post("/verify-email", controllers.VerifyEmail(authService, logg))
		r.Post("/forgot-password", controllers.ForgotPassword(authService, logg))
		r.Post("/reset-password", controllers.ResetPassword(authService, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", controllers.PaymentsWebhook(paymentsWebhook, logg))
	})

	r.Route("/api/v1/storefront", func(r chi.Router) {
		r.Get("/{slug}", controllers.GetStore(storefrontService, logg))
		r.Get("/{slug}/products", controllers.ListStoreProducts(storefrontService, logg))
		r.Get("/{slug}/products/{productSlug}", controllers.GetStoreProduct(storefrontService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/api/v1/onboarding", controllers.Onboard(onboardingService, logg))

		r.Route("/api/v1/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(categoryService, catalogService, logg))
			r.Post("/", controllers.CreateCategory(categoryService, catalogService, logg))
			r.Put("/{categoryId}", controllers.UpdateCategory(categoryService, catalogService, logg))
			r.Delete("/{categoryId}", controllers.DeleteCategory(categoryService, catalogService, logg))
		})

		r.Route("/api/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, catalogService, logg))
			r.Post("/", controllers.CreateProduct(productService, catalogService, logg))
			r.Get("/{productId}", controllers.GetProduct(productService, catalogService, logg))
			r.Put("/{productId}", controllers.UpdateProduct(productService, catalogService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(productService, catalogService, logg))
		})
	})

	return r
}
