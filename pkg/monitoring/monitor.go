package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// FeedbackApplied 每条被聚合的反馈记录
	FeedbackApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_applied_total",
			Help: "Feedback records folded into session metrics",
		},
		[]string{"category"},
	)

	TrendClassifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trend_classifications_total",
			Help: "Trend classifier results by scope",
		},
		[]string{"scope", "trend"},
	)

	SubmissionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_rejections_total",
			Help: "Answer submissions rejected before being applied",
		},
		[]string{"reason"},
	)

	EvaluatorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evaluator_duration_seconds",
			Help:    "Latency of answer evaluation calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			FeedbackApplied,
			TrendClassifications,
			SubmissionRejections,
			EvaluatorDuration,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
