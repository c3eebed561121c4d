package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives the latency of every served request
type HTTPRecorder interface {
	ObserveHTTPRequestDuration(method, path, code string, duration float64)
}

// statusStrings avoids an strconv.Itoa per request for common codes
var statusStrings [600]string

func init() {
	for i := 100; i < 600; i++ {
		statusStrings[i] = strconv.Itoa(i)
	}
}

func statusString(code int) string {
	if code >= 100 && code < 600 {
		return statusStrings[code]
	}
	return strconv.Itoa(code)
}

// Metrics records request latency labelled by method, route pattern and
// status. Unmatched routes are folded into "unknown" to keep cardinality
// bounded.
func Metrics(recorder HTTPRecorder, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		recorder.ObserveHTTPRequestDuration(
			c.Request.Method,
			route,
			statusString(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
