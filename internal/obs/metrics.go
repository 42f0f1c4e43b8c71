package obs

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "brushwork"

var (
	appInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "brushwork",
			Subsystem: "app",
			Name:      "info",
			Help:      "Static app info for deployment verification.",
		},
		[]string{"service", "version"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brushwork",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "route", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brushwork",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	lifecycleOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brushwork",
			Name:      "lifecycle_operations_total",
			Help:      "Job lifecycle operations by outcome.",
		},
		[]string{"op", "result"},
	)
	payrollReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brushwork",
			Name:      "payroll_reports_total",
			Help:      "Payroll report generation attempts by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(appInfo, httpRequestsTotal, httpRequestDuration, lifecycleOps, payrollReports)
}

func SetAppInfo() {
	ver := strings.TrimSpace(os.Getenv("APP_VERSION"))
	if ver == "" {
		ver = "dev"
	}
	appInfo.WithLabelValues(ServiceName, ver).Set(1)
}

// RecordLifecycle counts one lifecycle operation. result is "ok", "rejected"
// for caller errors, or "error".
func RecordLifecycle(op, result string) {
	lifecycleOps.WithLabelValues(op, result).Inc()
}

// RecordPayroll counts one payroll generation attempt.
func RecordPayroll(result string) {
	payrollReports.WithLabelValues(result).Inc()
}

// MetricsMiddleware records request count and latency labelled with the chi
// route pattern, so ids never reach label values.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.code)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.code = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
