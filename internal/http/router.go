package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/quizgen-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizgen-backend/internal/http/middleware"
	"github.com/yungbote/quizgen-backend/internal/observability"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

const metricsPath = "/metrics"

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	SessionAuth *httpMW.SessionAuthMiddleware

	SessionHandler *httpH.SessionHandler
	HistoryHandler *httpH.HistoryHandler
	HealthHandler  *httpH.HealthHandler
	MetricsHandler *httpH.MetricsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, metricsPath))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.MetricsHandler != nil && cfg.Metrics != nil {
		r.GET(metricsPath, cfg.MetricsHandler.Scrape)
	}

	api := r.Group("/api")
	{
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Create)
		}
	}

	protected := api.Group("/")
	{
		if cfg.SessionAuth != nil {
			protected.Use(cfg.SessionAuth.RequireSession())
		}

		// Session
		if cfg.SessionHandler != nil {
			protected.GET("/session", cfg.SessionHandler.Get)
			protected.POST("/session/actions", cfg.SessionHandler.Act)
		}

		// History
		if cfg.HistoryHandler != nil {
			protected.GET("/history", cfg.HistoryHandler.List)
		}
	}

	return r
}
