package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lockedin",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lockedin",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lockedin",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	habitToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lockedin",
			Subsystem: "habits",
			Name:      "toggles_total",
			Help:      "Total number of habit completion toggles.",
		},
		[]string{"result"},
	)

	xpAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lockedin",
			Subsystem: "habits",
			Name:      "xp_awarded_total",
			Help:      "Total XP granted by completing habits.",
		},
	)

	daysClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lockedin",
			Subsystem: "days",
			Name:      "closed_total",
			Help:      "Total number of closed days by outcome.",
		},
		[]string{"outcome"},
	)

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lockedin",
			Subsystem: "users",
			Name:      "registrations_total",
			Help:      "Total number of registered accounts.",
		},
	)

	maintenanceRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lockedin",
			Subsystem: "maintenance",
			Name:      "runs_total",
			Help:      "Total number of maintenance job runs.",
		},
		[]string{"success"},
	)

	completionsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lockedin",
			Subsystem: "maintenance",
			Name:      "completions_pruned_total",
			Help:      "Stale completion rows removed by maintenance.",
		},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lockedin",
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Currently connected websocket clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		habitToggles,
		xpAwarded,
		daysClosed,
		registrations,
		maintenanceRuns,
		completionsPruned,
		wsClients,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordToggle counts a completion toggle and the XP it granted.
func RecordToggle(completed bool, xp int) {
	if completed {
		habitToggles.WithLabelValues("completed").Inc()
		if xp > 0 {
			xpAwarded.Add(float64(xp))
		}
		return
	}
	habitToggles.WithLabelValues("uncompleted").Inc()
}

// RecordDayClosed counts a day-close by outcome.
func RecordDayClosed(outcome string) {
	daysClosed.WithLabelValues(outcome).Inc()
}

// RecordRegistration counts a new account.
func RecordRegistration() {
	registrations.Inc()
}

// RecordMaintenance counts a maintenance run and the rows it removed.
func RecordMaintenance(pruned int64, success bool) {
	maintenanceRuns.WithLabelValues(strconv.FormatBool(success)).Inc()
	if pruned > 0 {
		completionsPruned.Add(float64(pruned))
	}
}

// SetWebsocketClients reports the current number of websocket clients.
func SetWebsocketClients(n int) {
	wsClients.Set(float64(n))
}

// routePattern uses the chi route pattern so ids do not explode label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}
