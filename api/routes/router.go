package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sugarmaple/bakehouse-backend/api/controllers"
	webhookcontrollers "github.com/sugarmaple/bakehouse-backend/api/controllers/webhooks"
	"github.com/sugarmaple/bakehouse-backend/api/middleware"
	authsvc "github.com/sugarmaple/bakehouse-backend/internal/auth"
	checkoutsvc "github.com/sugarmaple/bakehouse-backend/internal/checkout"
	inquirysvc "github.com/sugarmaple/bakehouse-backend/internal/inquiries"
	menusvc "github.com/sugarmaple/bakehouse-backend/internal/menu"
	ordersvc "github.com/sugarmaple/bakehouse-backend/internal/orders"
	"github.com/sugarmaple/bakehouse-backend/internal/payments"
	settingssvc "github.com/sugarmaple/bakehouse-backend/internal/settings"
	stripewebhook "github.com/sugarmaple/bakehouse-backend/internal/webhooks/stripe"
	"github.com/sugarmaple/bakehouse-backend/pkg/config"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
	"github.com/sugarmaple/bakehouse-backend/pkg/metrics"
	"github.com/sugarmaple/bakehouse-backend/pkg/redis"
	"github.com/sugarmaple/bakehouse-backend/pkg/stripe"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis *redis.Client

	AuthService     authsvc.Service
	MenuService     menusvc.Service
	CheckoutService checkoutsvc.Service
	ConfirmService  payments.ConfirmService
	OrdersService   ordersvc.Service
	InquiryService  inquirysvc.Service
	SettingsService settingssvc.Service

	StripeClient  *stripe.Client
	WebhookSvc    *stripewebhook.Service
	WebhookGuard  *stripewebhook.IdempotencyGuard
	HTTPMetrics   *metrics.HTTPMetrics
	CheckoutStats *metrics.CheckoutMetrics
	PromRegistry  *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.WebhookSvc, deps.StripeClient, deps.WebhookGuard, deps.CheckoutStats, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
	})

	r.Route("/api/v1/menu", func(r chi.Router) {
		r.Get("/", controllers.MenuForDate(deps.MenuService, logg))
		r.Get("/items/{slug}", controllers.MenuItemBySlug(deps.MenuService, logg))
	})
	r.Get("/api/v1/pickup-windows", controllers.PickupWindows(deps.MenuService, logg))

	r.With(
		middleware.OptionalAuth(cfg.JWT, logg),
		middleware.CheckoutRateLimit(cfg.CheckoutRate, deps.Redis, logg),
	).Post("/api/v1/checkout", controllers.Checkout(deps.CheckoutService, logg))

	r.Route("/api/v1/orders", func(r chi.Router) {
		// Confirmation is keyed by the Stripe session id, which only the
		// paying browser holds; it works for guest orders too.
		r.Get("/confirm", controllers.OrderConfirm(deps.ConfirmService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/", controllers.OrdersList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
		})
	})

	r.Route("/api/v1/inquiries", func(r chi.Router) {
		r.With(middleware.OptionalAuth(cfg.JWT, logg)).Post("/", controllers.InquiryCreate(deps.InquiryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/", controllers.InquiriesList(deps.InquiryService, logg))
			r.Get("/{inquiryId}", controllers.InquiryDetail(deps.InquiryService, logg))
			r.Post("/{inquiryId}/accept", controllers.InquiryAccept(deps.InquiryService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.OrdersService, logg))
			r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.OrdersService, logg))
		})

		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/", controllers.AdminInquiriesList(deps.InquiryService, logg))
			r.Get("/{inquiryId}", controllers.AdminInquiryDetail(deps.InquiryService, logg))
			r.Put("/{inquiryId}/status", controllers.AdminInquiryUpdateStatus(deps.InquiryService, logg))
			r.Post("/{inquiryId}/quotes", controllers.AdminInquiryQuote(deps.InquiryService, logg))
			r.Delete("/{inquiryId}", controllers.AdminInquiryDelete(deps.InquiryService, logg))
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.AdminMenuList(deps.MenuService, logg))
			r.Post("/", controllers.AdminMenuCreate(deps.MenuService, logg))
			r.Patch("/{itemId}", controllers.AdminMenuUpdate(deps.MenuService, logg))
			r.Put("/{itemId}/schedule", controllers.AdminScheduleDay(deps.MenuService, logg))
		})
		r.Post("/pickup-windows", controllers.AdminPickupWindowCreate(deps.MenuService, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminSettingsList(deps.SettingsService, logg))
			r.Put("/{key}", controllers.AdminSettingUpdate(deps.SettingsService, logg))
		})
	})

	return r
}
