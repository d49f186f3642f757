package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedPath - метка для запросов мимо маршрутов, чтобы не плодить серии по сырым URL
const unmatchedPath = "unmatched"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of response time for handler",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of HTTP requests being handled",
		},
	)

	httpErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP error responses (status 4xx and 5xx)",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	// go_* метрики рантайма отдает стандартный коллектор реестра
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		httpInFlightRequests,
		httpErrorsTotal,
	)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlightRequests.Inc()
		defer httpInFlightRequests.Dec()
		start := time.Now()

		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rr, r)

		duration := time.Since(start).Seconds()
		path := routePath(r)
		status := strconv.Itoa(rr.status)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)

		if rr.status >= 400 {
			httpErrorsTotal.WithLabelValues(r.Method, path, status).Inc()
		}
	})
}

// routePath - шаблон маршрута mux вместо r.URL.Path
func routePath(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedPath
	}

	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedPath
	}
	return tpl
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}
