package app

import (
	"github.com/yungbote/quizgen-backend/internal/data/db"
	"github.com/yungbote/quizgen-backend/internal/http"
	httpH "github.com/yungbote/quizgen-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizgen-backend/internal/http/middleware"
	"github.com/yungbote/quizgen-backend/internal/observability"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

type Middleware struct {
	SessionAuth *httpMW.SessionAuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Session *httpH.SessionHandler
	History *httpH.HistoryHandler
	Metrics *httpH.MetricsHandler
}

func wireHandlers(log *logger.Logger, services Services, dbService *db.Service, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(dbService),
		Session: httpH.NewSessionHandler(log, services.Sessions),
		History: httpH.NewHistoryHandler(services.Sessions),
		Metrics: httpH.NewMetricsHandler(metrics),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		SessionAuth: httpMW.NewSessionAuthMiddleware(log, services.Sessions),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        metrics,
		SessionAuth:    middleware.SessionAuth,
		SessionHandler: handlers.Session,
		HistoryHandler: handlers.History,
		HealthHandler:  handlers.Health,
		MetricsHandler: handlers.Metrics,
	})
}
