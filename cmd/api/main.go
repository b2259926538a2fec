package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/padistore/padistore-backend/api/routes"
	"github.com/padistore/padistore-backend/internal/accounts"
	cartsvc "github.com/padistore/padistore-backend/internal/cart"
	checkoutsvc "github.com/padistore/padistore-backend/internal/checkout"
	"github.com/padistore/padistore-backend/internal/coupons"
	"github.com/padistore/padistore-backend/internal/orders"
	"github.com/padistore/padistore-backend/internal/payments"
	"github.com/padistore/padistore-backend/internal/pricing"
	product "github.com/padistore/padistore-backend/internal/products"
	"github.com/padistore/padistore-backend/internal/zones"
	"github.com/padistore/padistore-backend/pkg/auth/session"
	"github.com/padistore/padistore-backend/pkg/config"
	"github.com/padistore/padistore-backend/pkg/db"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/metrics"
	"github.com/padistore/padistore-backend/pkg/migrate"
	"github.com/padistore/padistore-backend/pkg/paystack"
	"github.com/padistore/padistore-backend/pkg/redis"
)

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	accountService, err := accounts.NewService(
		accounts.NewRepository(dbClient.DB()),
		sessionManager,
		redisClient,
		logg,
		cfg.JWT,
		cfg.Password,
		cfg.AuthRateLimit,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	productRepo := product.NewRepository(dbClient.DB())
	productService, err := product.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(redisClient, productRepo, logg, cfg.Checkout.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(
		coupons.NewRepository(dbClient.DB()),
		redisClient,
		logg,
		cfg.Checkout.CouponTTL,
		cfg.Pricing.PadiCodePrefix,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	zoneService, err := zones.NewService(zones.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create zone service", err)
		os.Exit(1)
	}

	calculator, err := pricing.NewCalculator(cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing calculator", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		cartService,
		couponService,
		zoneService,
		orderRepo,
		calculator,
		redisClient,
		logg,
		httpMetrics,
		cfg.Checkout.SelectionTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	paystackClient, err := paystack.NewClient(context.Background(), cfg.Paystack, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		orderRepo,
		paystackClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			httpMetrics,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			accountService,
			productService,
			cartService,
			couponService,
			zoneService,
			checkoutService,
			orderService,
			paymentService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
