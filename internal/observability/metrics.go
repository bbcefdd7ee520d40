package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the server and the worker.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	salesTotal      *prometheus.CounterVec
	partialWrites   *prometheus.CounterVec
	expensesTotal   prometheus.Counter
	degradedReads   *prometheus.CounterVec
}

// NewMetrics initialises the registry and every metric.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panaderia_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "panaderia_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	sales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panaderia_sales_created_total",
		Help: "Sales recorded, split by kind (itemized or free).",
	}, []string{"kind"})
	partial := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panaderia_partial_writes_total",
		Help: "Multi-step writes that left a parent row without children.",
	}, []string{"op"})
	expenses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panaderia_expenses_added_total",
		Help: "Expenses recorded.",
	})
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panaderia_degraded_reads_total",
		Help: "Reads answered with an empty result after a store failure.",
	}, []string{"resource"})
	registry.MustRegister(requests, duration, sales, partial, expenses, degraded)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		salesTotal:      sales,
		partialWrites:   partial,
		expensesTotal:   expenses,
		degradedReads:   degraded,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// SaleCreated counts a recorded sale.
func (m *Metrics) SaleCreated(free bool) {
	if m == nil {
		return
	}
	kind := "itemized"
	if free {
		kind = "free"
	}
	m.salesTotal.WithLabelValues(kind).Inc()
}

// PartialWrite counts a parent row left without its children.
func (m *Metrics) PartialWrite(op string) {
	if m == nil {
		return
	}
	m.partialWrites.WithLabelValues(op).Inc()
}

// ExpenseAdded counts a recorded expense.
func (m *Metrics) ExpenseAdded() {
	if m == nil {
		return
	}
	m.expensesTotal.Inc()
}

// DegradedRead counts a read that fell back to an empty result.
func (m *Metrics) DegradedRead(resource string) {
	if m == nil {
		return
	}
	m.degradedReads.WithLabelValues(resource).Inc()
}

// Registerer exposes the registry so the worker can add job metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
