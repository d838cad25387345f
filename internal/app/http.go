package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/http"
	httpH "github.com/yungbote/skillpath-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillpath-backend/internal/http/middleware"
	"github.com/yungbote/skillpath-backend/internal/observability"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

func wireRouterConfig(db *gorm.DB, log *logger.Logger, cfg Config, svcs Services, metrics *observability.Metrics) http.RouterConfig {
	log.Info("Wiring handlers...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		Metrics:         metrics,
		ServeMetrics:    cfg.MetricsAddr == "",
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
		HealthHandler:   httpH.NewHealthHandler(db),
		ActivityHandler: httpH.NewActivityHandler(log, svcs.Submissions, svcs.Ledger),
		ProfileHandler:  httpH.NewProfileHandler(log, svcs.Profiles),
		ResourceHandler: httpH.NewResourceHandler(log, svcs.Annotations),
		APIKeyHandler:   httpH.NewAPIKeyHandler(log, svcs.APIKeys),
		ConceptHandler:  httpH.NewConceptHandler(log, svcs.Concepts),
		AssistHandler:   httpH.NewAssistHandler(log, svcs.Assist),
	}
}
