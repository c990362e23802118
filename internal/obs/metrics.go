package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Session and ledger metrics
var (
	loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bankist_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	transfersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bankist_transfers_total",
		Help: "Transfer attempts by result.",
	}, []string{"result"})

	loansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bankist_loans_total",
		Help: "Loan requests by result (rejected, scheduled, posted, discarded).",
	}, []string{"result"})

	sessionActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bankist_session_active",
		Help: "1 while a customer is logged in.",
	})

	sessionTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bankist_session_timeouts_total",
		Help: "Sessions ended by the inactivity timer.",
	})
)

var initOnce sync.Once

// Init registers all metrics in the default registry. Safe to call repeatedly.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			loginsTotal, transfersTotal, loansTotal, sessionActive, sessionTimeouts,
		)
	})
}

func ObserveLogin(result string)    { loginsTotal.WithLabelValues(result).Inc() }
func ObserveTransfer(result string) { transfersTotal.WithLabelValues(result).Inc() }
func ObserveLoan(result string)     { loansTotal.WithLabelValues(result).Inc() }
func ObserveTimeout()               { sessionTimeouts.Inc() }

func SetSessionActive(active bool) {
	if active {
		sessionActive.Set(1)
		return
	}
	sessionActive.Set(0)
}

// Handler exposes the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CanonicalPath folds query strings and trailing slashes so label cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "/"
	}
	return path
}

// Instrument records RPS, latency and in-flight requests.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush lets the SSE stream work through the instrumentation wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
