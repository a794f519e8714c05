package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/streetlink-backend/api/controllers"
	"github.com/angelmondragon/streetlink-backend/api/middleware"
	"github.com/angelmondragon/streetlink-backend/internal/auth"
	"github.com/angelmondragon/streetlink-backend/internal/catalog"
	"github.com/angelmondragon/streetlink-backend/internal/deliveries"
	"github.com/angelmondragon/streetlink-backend/internal/orders"
	"github.com/angelmondragon/streetlink-backend/internal/users"
	"github.com/angelmondragon/streetlink-backend/pkg/config"
	"github.com/angelmondragon/streetlink-backend/pkg/db"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	"github.com/angelmondragon/streetlink-backend/pkg/identity"
	"github.com/angelmondragon/streetlink-backend/pkg/logger"
	"github.com/angelmondragon/streetlink-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/streetlink-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. cmd/api builds one after
// wiring the services.
type Deps struct {
	Cfg         *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *pkgredis.Client
	Metrics     *metrics.HTTPMetrics
	Verifier    identity.Verifier
	UsersRepo   *users.Repository
	AuthSvc     auth.Service
	CatalogSvc  catalog.Service
	OrdersSvc   orders.Service
	DeliverySvc deliveries.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	logg := d.Logger

	// A nil *redis.Client must stay a nil interface downstream.
	var idemStore pkgredis.IdempotencyStore
	var redisPing interface{ Ping(context.Context) error }
	var limiter interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	if d.Redis != nil {
		idemStore = d.Redis
		redisPing = d.Redis
		limiter = d.Redis
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(middleware.CORS(nil))

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		d.Cfg.AuthRateLimit.LoginWindow,
		d.Cfg.AuthRateLimit.LoginIPLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		d.Cfg.AuthRateLimit.RegisterWindow,
		d.Cfg.AuthRateLimit.RegisterIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Cfg))
		r.Get("/ready", controllers.HealthReady(d.Cfg, logg, d.DB, redisPing))
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/api/tracking/{assignmentId}", controllers.PublicTracking(d.DeliverySvc, logg))

	// Register and login verify the bearer token but cannot assume a
	// marketplace account exists yet.
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.VerifyIdentity(d.Verifier, logg))
		r.Use(middleware.Idempotency(idemStore, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).
			Post("/register", controllers.AuthRegister(d.AuthSvc, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).
			Post("/login", controllers.AuthLogin(d.AuthSvc, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(d.Verifier, d.UsersRepo, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/users/me", controllers.Me(d.AuthSvc, logg))

		r.Route("/distributor", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleDistributor, logg))
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.DistributorListProducts(d.CatalogSvc, logg))
				r.Post("/", controllers.DistributorCreateProduct(d.CatalogSvc, logg))
				r.Put("/{productId}", controllers.DistributorUpdateProduct(d.CatalogSvc, logg))
				r.Delete("/{productId}", controllers.DistributorDeleteProduct(d.CatalogSvc, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.DistributorListOrders(d.OrdersSvc, logg))
				r.Patch("/{orderId}", controllers.DistributorUpdateOrderStatus(d.OrdersSvc, logg))
			})
			r.Route("/deliveries", func(r chi.Router) {
				r.Get("/", controllers.DistributorListDeliveries(d.DeliverySvc, logg))
				r.Post("/", controllers.DistributorCreateDelivery(d.DeliverySvc, logg))
				r.Patch("/{assignmentId}", controllers.DistributorOverrideDeliveryStatus(d.DeliverySvc, logg))
			})
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleStreetVendor, logg))
			r.Get("/distributors", controllers.VendorListDistributors(d.UsersRepo, logg))
			r.Get("/products", controllers.VendorBrowseProducts(d.CatalogSvc, logg))
			r.Get("/products/{distributorId}", controllers.VendorBrowseProducts(d.CatalogSvc, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.VendorListOrders(d.OrdersSvc, logg))
				r.Get("/{orderId}", controllers.VendorGetOrder(d.OrdersSvc, logg))
				r.Post("/", controllers.VendorCreateOrder(d.OrdersSvc, logg))
			})
			r.Post("/checkout", controllers.VendorCheckout(d.OrdersSvc, logg))
			r.Get("/profile", controllers.Me(d.AuthSvc, logg))
			r.Put("/profile", controllers.UpdateProfile(d.AuthSvc, logg))
		})

		r.Route("/agent", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleDeliveryAgent, logg))
			r.Get("/available-deliveries", controllers.AgentAvailableDeliveries(d.DeliverySvc, logg))
			r.Get("/my-deliveries", controllers.AgentMyDeliveries(d.DeliverySvc, logg))
			r.Post("/accept-delivery/{assignmentId}", controllers.AgentAcceptDelivery(d.DeliverySvc, logg))
			r.Put("/update-status/{assignmentId}", controllers.AgentUpdateDeliveryStatus(d.DeliverySvc, logg))
			r.Put("/update-location/{assignmentId}", controllers.AgentUpdateDeliveryLocation(d.DeliverySvc, logg))
			r.Post("/complete-delivery/{assignmentId}", controllers.AgentCompleteDelivery(d.DeliverySvc, logg))
		})
	})

	return r
}
