package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smehta-dev/storefront-backend/api/controllers"
	"github.com/smehta-dev/storefront-backend/api/middleware"
	cartsvc "github.com/smehta-dev/storefront-backend/internal/cart"
	"github.com/smehta-dev/storefront-backend/internal/orders"
	"github.com/smehta-dev/storefront-backend/pkg/config"
	"github.com/smehta-dev/storefront-backend/pkg/gateway"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
	"github.com/smehta-dev/storefront-backend/pkg/metrics"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.HTTPMetrics
	Registry *prometheus.Registry
	Carts    *cartsvc.Registry
	Gateway  *gateway.Client
	Orders   orders.Service
	Pingers  map[string]controllers.Pinger
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, params.Metrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Pingers))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(params.Carts, logg))
			r.Post("/", controllers.CartAddItem(params.Carts, params.Gateway, logg))
			r.Delete("/", controllers.CartClear(params.Carts, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(params.Carts, logg))
			r.Put("/shipping", controllers.CartSetShipping(params.Carts, logg))
			r.Put("/payment", controllers.CartSetPayment(params.Carts, logg))
			r.Get("/summary", controllers.OrderPreview(params.Orders, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(params.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(params.Orders, logg))
			r.Post("/{orderId}/pay", controllers.OrderPay(params.Orders, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(params.Gateway, logg))
			r.Get("/{productId}", controllers.ProductGet(params.Gateway, logg))
		})
	})

	return r
}
