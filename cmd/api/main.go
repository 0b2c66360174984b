package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sugarmaple/bakehouse-backend/api/routes"
	authsvc "github.com/sugarmaple/bakehouse-backend/internal/auth"
	checkoutsvc "github.com/sugarmaple/bakehouse-backend/internal/checkout"
	inquirysvc "github.com/sugarmaple/bakehouse-backend/internal/inquiries"
	menusvc "github.com/sugarmaple/bakehouse-backend/internal/menu"
	ordersvc "github.com/sugarmaple/bakehouse-backend/internal/orders"
	"github.com/sugarmaple/bakehouse-backend/internal/payments"
	settingssvc "github.com/sugarmaple/bakehouse-backend/internal/settings"
	"github.com/sugarmaple/bakehouse-backend/internal/users"
	stripewebhook "github.com/sugarmaple/bakehouse-backend/internal/webhooks/stripe"
	"github.com/sugarmaple/bakehouse-backend/pkg/config"
	"github.com/sugarmaple/bakehouse-backend/pkg/db"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
	"github.com/sugarmaple/bakehouse-backend/pkg/metrics"
	"github.com/sugarmaple/bakehouse-backend/pkg/migrate"
	"github.com/sugarmaple/bakehouse-backend/pkg/redis"
	"github.com/sugarmaple/bakehouse-backend/pkg/stripe"
)

const webhookIdempotencyTTL = 48 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to configure stripe", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)
	checkoutMetrics := metrics.NewCheckoutMetrics(promRegistry)

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	menuRepo := menusvc.NewRepository(gormDB)
	ordersRepo := ordersvc.NewRepository(gormDB)
	inquiriesRepo := inquirysvc.NewRepository(gormDB)
	settingsRepo := settingssvc.NewRepository(gormDB)

	authService, err := authsvc.NewService(usersRepo, cfg.JWT, cfg.Password)
	requireService(logg, "auth service", err)

	menuService, err := menusvc.NewService(menuRepo, gormDB)
	requireService(logg, "menu service", err)

	settingsService, err := settingssvc.NewService(settingsRepo)
	requireService(logg, "settings service", err)

	sessionClient := checkoutsvc.NewStripeClient(stripeClient)
	checkoutService, err := checkoutsvc.NewService(gormDB, menuRepo, settingsService, sessionClient, stripeClient, checkoutMetrics)
	requireService(logg, "checkout service", err)

	confirmService, err := payments.NewConfirmService(dbClient, ordersRepo, sessionClient, logg, checkoutMetrics)
	requireService(logg, "confirm service", err)

	ordersService, err := ordersvc.NewService(ordersRepo, dbClient)
	requireService(logg, "orders service", err)

	inquiryService, err := inquirysvc.NewService(inquiriesRepo, dbClient)
	requireService(logg, "inquiries service", err)

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Confirm: confirmService,
		Logger:  logg,
	})
	requireService(logg, "webhook service", err)

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookIdempotencyTTL, "stripe-webhook")
	requireService(logg, "webhook guard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	handler := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		AuthService:     authService,
		MenuService:     menuService,
		CheckoutService: checkoutService,
		ConfirmService:  confirmService,
		OrdersService:   ordersService,
		InquiryService:  inquiryService,
		SettingsService: settingsService,
		StripeClient:    stripeClient,
		WebhookSvc:      webhookService,
		WebhookGuard:    webhookGuard,
		HTTPMetrics:     httpMetrics,
		CheckoutStats:   checkoutMetrics,
		PromRegistry:    promRegistry,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name, err)
	os.Exit(1)
}
