package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/credit-market/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	SigninsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market",
		Name:      "signins_total",
		Help:      "Signin attempts, by outcome.",
	}, []string{"outcome"})

	TokenRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market",
		Name:      "token_rejections_total",
		Help:      "Bearer tokens rejected by the auth middleware, by reason.",
	}, []string{"reason"})

	// Catalog metrics

	ProductsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market",
		Name:      "products_created_total",
		Help:      "Products added through the admin API.",
	})

	CatalogProducts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "market",
		Name:      "catalog_products",
		Help:      "Number of products in the catalog, refreshed periodically.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "market",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "market",
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})
)

func Register() {
	prometheus.MustRegister(
		SigninsTotal,
		TokenRejectionsTotal,
		ProductsCreatedTotal,
		CatalogProducts,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		HTTPRequestsInFlight,
	)
}

// NewServer serves /metrics plus liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
