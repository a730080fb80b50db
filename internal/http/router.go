package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/Brooks-Cole/brooks-books/internal/http/handlers"
	httpMW "github.com/Brooks-Cole/brooks-books/internal/http/middleware"
)

type RouterConfig struct {
	ServiceName string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	BookHandler           *httpH.BookHandler
	SeriesHandler         *httpH.SeriesHandler
	RecommendationHandler *httpH.RecommendationHandler
	MaintenanceHandler    *httpH.MaintenanceHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}

		if cfg.BookHandler != nil {
			api.GET("/books", cfg.BookHandler.List)
			api.GET("/books/:id", cfg.BookHandler.Get)
		}

		if cfg.SeriesHandler != nil {
			api.GET("/series", cfg.SeriesHandler.List)
			api.GET("/series/:name", cfg.SeriesHandler.Get)
		}

		if cfg.RecommendationHandler != nil {
			recs := api.Group("/recommendations")
			recs.POST("/sync", cfg.RecommendationHandler.Sync)
			recs.GET("/tag/:tag", cfg.RecommendationHandler.ByTag)
			recs.GET("/graph", cfg.RecommendationHandler.Graph)
			recs.GET("/series/:name/books", cfg.RecommendationHandler.SeriesBooks)
			if cfg.AuthMiddleware != nil {
				recs.GET("/user", cfg.AuthMiddleware.RequireAuth(), cfg.RecommendationHandler.ForUser)
				recs.POST("/series",
					cfg.AuthMiddleware.RequireAuth(),
					cfg.AuthMiddleware.RequireAdmin(),
					cfg.RecommendationHandler.UpsertSeries)
			}
			// Keep last so "/user" and friends are not swallowed.
			recs.GET("/:bookId", cfg.RecommendationHandler.Similar)
		}
	}

	if cfg.AuthMiddleware != nil {
		protected := api.Group("/")
		protected.Use(cfg.AuthMiddleware.RequireAuth())

		if cfg.BookHandler != nil {
			protected.POST("/books/:id/tags", cfg.BookHandler.UpdateTags)
			protected.POST("/books/:id/rating", cfg.BookHandler.Rate)
			protected.POST("/books/:id/read-status", cfg.BookHandler.SetReadStatus)
		}

		admin := protected.Group("/")
		admin.Use(cfg.AuthMiddleware.RequireAdmin())

		if cfg.BookHandler != nil {
			admin.POST("/books", cfg.BookHandler.Create)
			admin.PUT("/books/:id", cfg.BookHandler.Update)
		}
		if cfg.SeriesHandler != nil {
			admin.POST("/series", cfg.SeriesHandler.Upsert)
		}
		if cfg.MaintenanceHandler != nil {
			maint := admin.Group("/maintenance")
			maint.POST("/sync-graph", cfg.MaintenanceHandler.SyncGraph)
			maint.GET("/graph-state", cfg.MaintenanceHandler.GraphState)
			maint.POST("/cleanup-tags", cfg.MaintenanceHandler.CleanupTags)
			maint.POST("/relink-tags", cfg.MaintenanceHandler.RelinkTags)
		}
	}

	return r
}
