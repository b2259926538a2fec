package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/padistore/padistore-backend/api/controllers"
	"github.com/padistore/padistore-backend/api/middleware"
	"github.com/padistore/padistore-backend/internal/accounts"
	cartsvc "github.com/padistore/padistore-backend/internal/cart"
	checkoutsvc "github.com/padistore/padistore-backend/internal/checkout"
	"github.com/padistore/padistore-backend/internal/coupons"
	"github.com/padistore/padistore-backend/internal/orders"
	"github.com/padistore/padistore-backend/internal/payments"
	product "github.com/padistore/padistore-backend/internal/products"
	"github.com/padistore/padistore-backend/internal/zones"
	"github.com/padistore/padistore-backend/pkg/auth/session"
	"github.com/padistore/padistore-backend/pkg/config"
	"github.com/padistore/padistore-backend/pkg/db"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/metrics"
	"github.com/padistore/padistore-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	accountService accounts.Service,
	productService product.Service,
	cartService cartsvc.Service,
	couponService coupons.Service,
	zoneService zones.Service,
	checkoutService checkoutsvc.Service,
	orderService orders.Service,
	paymentService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(accountService, logg))
		r.Post("/login", controllers.AuthLogin(accountService, logg))
		r.Post("/refresh", controllers.AuthRefresh(accountService, logg))
		r.Post("/logout", controllers.AuthLogout(accountService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Get("/slug/{slug}", controllers.ProductBySlug(productService, logg))
		r.Get("/{productID}", controllers.ProductDetail(productService, logg))
	})

	r.Get("/api/v1/zones", controllers.ZoneList(zoneService, logg))

	// Shared payment links and gateway callbacks are reachable without a
	// session: the payer usually is not the account owner.
	r.Route("/api/v1/payments/shared/{token}", func(r chi.Router) {
		r.Get("/", controllers.PaymentSharedFetch(paymentService, logg))
		r.Post("/pay", controllers.PaymentSharedPay(paymentService, logg))
	})
	r.Get("/api/v1/payments/verify/{reference}", controllers.PaymentVerify(paymentService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items", controllers.CartSetQuantity(cartService, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/products/{productID}", controllers.CartRemoveProduct(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Route("/v1/coupons", func(r chi.Router) {
			r.Get("/", controllers.CouponFetch(couponService, logg))
			r.Post("/verify", controllers.CouponVerify(couponService, cartService, logg))
			r.Post("/apply", controllers.CouponApply(couponService, cartService, logg))
			r.Delete("/", controllers.CouponRemove(couponService, logg))
		})

		r.Route("/v1/checkout", func(r chi.Router) {
			r.Get("/selection", controllers.CheckoutSelection(checkoutService, logg))
			r.Put("/address", controllers.CheckoutAddress(checkoutService, logg))
			r.Put("/pickup", controllers.CheckoutPickup(checkoutService, logg))
			r.Post("/back", controllers.CheckoutBack(checkoutService, logg))
			r.Get("/review", controllers.CheckoutReview(checkoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(checkoutService, logg))
		})

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderID}", controllers.OrderDetail(orderService, logg))
		})

		r.Route("/v1/payments/orders/{orderID}", func(r chi.Router) {
			r.Post("/pay-now", controllers.PaymentPayNow(paymentService, logg))
			r.Post("/pay-for-me", controllers.PaymentPayForMe(paymentService, logg))
		})

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileFetch(accountService, logg))
			r.Put("/", controllers.ProfileUpdate(accountService, logg))
		})
	})

	return r
}
