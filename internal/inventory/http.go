package inventory

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"InventoryStore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// Tokens guards mutating routes when set.
	Tokens *kit.TokenMaker

	// RateLimit caps requests per client per RateWindow; zero disables it.
	RateLimit  int
	RateWindow time.Duration
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, s, deps)

	s.Routes(r, r.With(kit.RequireJWT(deps.Tokens)))
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.RateLimit > 0 {
		window := deps.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(kit.NewIPRateLimiter(deps.RateLimit, window).Middleware)
	}
}

func setupMetrics(r *chi.Mux, s *Server, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePatternOrPath))
	deps.Registry.MustRegister(newInventoryCollectors(s.Inventory)...)

	if !deps.MetricsEnabled {
		return
	}

	r.Handle("/metrics", kit.MetricsHandler(deps.Registry, deps.MetricsToken))
}

func newInventoryCollectors(inv *Inventory) []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "inventory_products",
			Help: "Products currently held in the store",
		}, func() float64 { return float64(inv.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "inventory_total_value",
			Help: "Sum of price times quantity over all products",
		}, func() float64 {
			v, _ := inv.TotalValue().Float64()
			return v
		}),
	}
}
