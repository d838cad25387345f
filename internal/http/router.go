package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/skillpath-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillpath-backend/internal/http/middleware"
	"github.com/yungbote/skillpath-backend/internal/observability"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics
	// ServeMetrics exposes /metrics on the API listener.
	ServeMetrics bool

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	ActivityHandler *httpH.ActivityHandler
	ProfileHandler  *httpH.ProfileHandler
	ResourceHandler *httpH.ResourceHandler
	APIKeyHandler   *httpH.APIKeyHandler
	ConceptHandler  *httpH.ConceptHandler
	AssistHandler   *httpH.AssistHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.ServeMetrics && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.ActivityHandler != nil {
			protected.POST("/activities/:id/submit", cfg.ActivityHandler.Submit)
			protected.GET("/activities/:id/progress", cfg.ActivityHandler.GetProgress)
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.GetProfile)
			protected.GET("/profile/skills", cfg.ProfileHandler.ListSkills)
			protected.GET("/profile/progress", cfg.ProfileHandler.ListProgress)
		}

		if cfg.ResourceHandler != nil {
			protected.POST("/resources/:id/explain", cfg.ResourceHandler.Explain)
			protected.POST("/resources/:id/explain/async", cfg.ResourceHandler.ExplainAsync)
		}

		if cfg.APIKeyHandler != nil {
			protected.POST("/api-keys", cfg.APIKeyHandler.Save)
			protected.GET("/api-keys", cfg.APIKeyHandler.List)
			protected.DELETE("/api-keys/:service", cfg.APIKeyHandler.Delete)
		}

		if cfg.ConceptHandler != nil {
			protected.POST("/concepts/:id/explain", cfg.ConceptHandler.Explain)
		}

		if cfg.AssistHandler != nil {
			protected.POST("/assist/explain-code", cfg.AssistHandler.ExplainCode)
			protected.POST("/assist/suggest-alternative", cfg.AssistHandler.SuggestAlternative)
			protected.POST("/assist/book-content", cfg.AssistHandler.BookContent)
		}
	}

	return r
}
