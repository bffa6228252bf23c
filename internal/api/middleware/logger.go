package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"forecast-compare/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// Logger tags every request with an id, logs it and records its metrics.
func Logger(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		log.Printf("[API] %s %s %d (duration: %v, id=%s)", c.Request.Method, c.Request.URL.Path, status, duration, id)
		rec.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), duration)
	}
}
