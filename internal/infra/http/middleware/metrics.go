package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buyer_leads_created_total",
			Help: "Total number of buyer leads created",
		},
		[]string{"via"},
	)

	leadUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buyer_lead_updates_total",
			Help: "Total number of lead update attempts by outcome",
		},
		[]string{"outcome"},
	)

	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buyer_imports_total",
			Help: "Total number of CSV imports by outcome",
		},
		[]string{"outcome"},
	)

	importRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buyer_import_rows_total",
			Help: "Total number of imported CSV rows by result",
		},
		[]string{"result"},
	)

	historyWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buyer_history_write_failures_total",
			Help: "Mutations committed without their history entry",
		},
	)

	leadsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "buyer_leads_by_status",
			Help: "Current number of buyer leads per status",
		},
		[]string{"status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern keeps label cardinality bounded: /api/buyers/{id}, not the raw id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordLeadCreated(via string) {
	leadsCreated.WithLabelValues(via).Inc()
}

func RecordLeadCreatedN(via string, n int) {
	leadsCreated.WithLabelValues(via).Add(float64(n))
}

func RecordLeadUpdate(outcome string) {
	leadUpdates.WithLabelValues(outcome).Inc()
}

func RecordImport(outcome string, inserted, failedRows int) {
	importsTotal.WithLabelValues(outcome).Inc()
	importRows.WithLabelValues("inserted").Add(float64(inserted))
	importRows.WithLabelValues("failed").Add(float64(failedRows))
}

func RecordHistoryFailure() {
	historyWriteFailures.Inc()
}

func SetLeadsByStatus(counts map[string]int) {
	leadsByStatus.Reset()
	for status, n := range counts {
		leadsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
