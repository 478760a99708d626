package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quizgen-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

// RequestLogger logs one line per request once the handler chain is done.
// Session requests also carry the session id, the action taken and the
// screen the session ended on.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := routeFields(c, status, time.Since(start))
		fields = append(fields, sessionFields(c.Request.Context())...)
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func routeFields(c *gin.Context, status int, elapsed time.Duration) []interface{} {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	fields := []interface{}{
		"method", strings.ToUpper(c.Request.Method),
		"path", path,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	}
	traceID, requestID := ctxutil.CorrelationIDs(c.Request.Context())
	if traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}
	if requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	return fields
}

func sessionFields(ctx context.Context) []interface{} {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return nil
	}
	fields := []interface{}{"session_id", rd.SessionID.String()}
	if rd.Action != "" {
		fields = append(fields, "action", rd.Action)
	}
	if rd.Screen != "" {
		fields = append(fields, "screen", rd.Screen)
	}
	return fields
}
