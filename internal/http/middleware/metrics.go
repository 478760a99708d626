package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizgen-backend/internal/observability"
)

// Metrics records request counts and latency per route template. Scrapes of
// scrapePath and requests that match no route are not observed. A nil m is
// a no-op.
func Metrics(m *observability.Metrics, scrapePath string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.URL.Path == scrapePath {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		if route := c.FullPath(); route != "" {
			m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
		}
	}
}
