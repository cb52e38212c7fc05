package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Attendance counters
	CheckInCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_check_in_total",
			Help: "Total number of check-in attempts",
		},
	)

	CheckOutCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_check_out_total",
			Help: "Total number of check-out attempts",
		},
	)

	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Company registration counter
	RegistrationCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_company_registrations_total",
			Help: "Total number of company registrations",
		},
	)

	// Employee onboarding counter
	OnboardingCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_employee_onboardings_total",
			Help: "Total number of employee onboardings",
		},
	)

	// Domain error counter by type
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_errors_total",
			Help: "Total number of domain errors",
		},
		[]string{"type"}, // "already_checked_in", "no_open_check_in", "forbidden", etc.
	)

	// Subscription operation counter
	SubscriptionOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_subscription_operations_total",
			Help: "Total number of subscription operations",
		},
		[]string{"operation"}, // "renew", "cancel", "quota_check", "feature_check"
	)

	// Integrity anomaly counter by company
	IntegrityAnomalyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_integrity_anomalies_total",
			Help: "Total number of detected data-integrity anomalies",
		},
		[]string{"company_id"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)

	// Blob storage operation duration
	StorageOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_storage_operation_duration_seconds",
			Help:    "Duration of attachment storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "save", "delete"
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "attendance_info",
			Help: "Information about the attendance service",
		},
		[]string{"version"},
	)

	// Employees per company quota usage
	EmployeeCountGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "attendance_employees_per_company",
			Help: "Current employee count snapshot per company",
		},
		[]string{"company_id"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(CheckInCounter)
	prometheus.MustRegister(CheckOutCounter)
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegistrationCounter)
	prometheus.MustRegister(OnboardingCounter)
	prometheus.MustRegister(ErrorCounter)
	prometheus.MustRegister(SubscriptionOperationCounter)
	prometheus.MustRegister(IntegrityAnomalyCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(StorageOperationDuration)

	// Register gauges
	prometheus.MustRegister(InfoGauge)
	prometheus.MustRegister(EmployeeCountGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordError increments the domain error counter for the given type
func RecordError(errorType string) {
	ErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordIntegrityAnomaly counts a detected data-integrity anomaly
func RecordIntegrityAnomaly(companyID uint) {
	IntegrityAnomalyCounter.WithLabelValues(strconv.FormatUint(uint64(companyID), 10)).Inc()
}

// SetEmployeeCount updates the quota usage gauge for a company
func SetEmployeeCount(companyID uint, count int) {
	EmployeeCountGauge.WithLabelValues(strconv.FormatUint(uint64(companyID), 10)).Set(float64(count))
}

// TrackDBOperation returns a function that, when called, records the duration
// of a database operation. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.WithLabelValues(operation).Observe(duration)
	}
}

// TrackStorageOperation records the duration of a blob storage operation.
func TrackStorageOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		StorageOperationDuration.WithLabelValues(operation).Observe(duration)
	}
}

// MetricsMiddleware returns an Echo middleware that records HTTP metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			endpoint := c.Path()
			method := c.Request().Method
			statusStr := strconv.Itoa(status)

			HTTPRequestCounter.WithLabelValues(endpoint, method, statusStr).Inc()
			RequestDuration.WithLabelValues(endpoint, method, statusStr).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
