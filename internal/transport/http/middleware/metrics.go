package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	reqLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
)

func init() { prometheus.MustRegister(reqTotal, reqLatency) }

// Metrics 请求量 + 时延。path 标签用路由模板（/api/users/:id），
// 不用原始 URL，避免每个 id 各成一条时间序列；未命中路由才退回原始 path
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		reqTotal.WithLabelValues(path, method, strconv.Itoa(c.Writer.Status())).Inc()
		reqLatency.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
	}
}
