package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP 请求指标
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studygen_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studygen_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// 业务指标
	FilesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studygen_files_processed_total",
			Help: "Total number of files processed by the extraction pipeline",
		},
		[]string{"status"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studygen_generations_total",
			Help: "Total number of content generation operations",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		FilesProcessed,
		GenerationsTotal,
	)
}

// Middleware 为 Gin 记录请求量和耗时
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method + " " + c.FullPath()

		RequestsTotal.WithLabelValues(method, statusCode).Inc()
		RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}

// Handler 返回 /metrics 端点的处理函数
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
