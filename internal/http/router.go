package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/theshibabasement/neuroflow/internal/http/handlers"
	httpMW "github.com/theshibabasement/neuroflow/internal/http/middleware"
)

type RouterConfig struct {
	ServiceName string

	AuthMiddleware *httpMW.AuthMiddleware

	ChatHandler   *httpH.ChatHandler
	MemoryHandler *httpH.MemoryHandler
	AdminHandler  *httpH.AdminHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAPIKey())
	}
	{
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Chat)
			api.GET("/sessions/:id/history", cfg.ChatHandler.SessionHistory)
		}
		if cfg.MemoryHandler != nil {
			api.GET("/memory/:scope_type/:scope_id/context", cfg.MemoryHandler.GetContext)
			api.POST("/memory/:scope_type/:scope_id", cfg.MemoryHandler.AddMemory)
			api.DELETE("/memory/:scope_type/:scope_id", cfg.MemoryHandler.ClearScope)
			api.GET("/memory/:scope_type/:scope_id/graph", cfg.MemoryHandler.KnowledgeGraph)
			api.GET("/memory/:scope_type/:scope_id/stats", cfg.MemoryHandler.Stats)
		}
	}

	admin := r.Group("/api/v1/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdminKey())
	}
	if cfg.AdminHandler != nil {
		admin.POST("/companies", cfg.AdminHandler.UpsertCompany)
		admin.GET("/companies", cfg.AdminHandler.ListCompanies)
		admin.GET("/companies/:id/context", cfg.AdminHandler.CompanyContext)
		admin.POST("/companies/:id/memory", cfg.AdminHandler.AddCompanyMemory)
	}

	return r
}
