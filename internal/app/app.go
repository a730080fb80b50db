package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	httpx "github.com/Brooks-Cole/brooks-books/internal/http"
	httpH "github.com/Brooks-Cole/brooks-books/internal/http/handlers"
	httpMW "github.com/Brooks-Cole/brooks-books/internal/http/middleware"
	"github.com/Brooks-Cole/brooks-books/internal/observability"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/platform/neo4jdb"
	"github.com/Brooks-Cole/brooks-books/internal/platform/postgres"
	"github.com/Brooks-Cole/brooks-books/internal/platform/redisdb"
	"github.com/Brooks-Cole/brooks-books/internal/services"
	"github.com/Brooks-Cole/brooks-books/internal/services/seriesdetect"
)

type App struct {
	Log    *logger.Logger
	Cfg    Config
	DB     *gorm.DB
	Neo4j  *neo4jdb.Client
	Cache  *redisdb.Cache
	Router *gin.Engine

	pg           *postgres.Service
	otelShutdown func(context.Context) error
}

// New wires the full application. A Neo4j connection failure is fatal:
// the graph mirror is the point of the service, so there is no degraded
// mode to fall back to.
func New(ctx context.Context) (*App, error) {
	cfg := LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})

	pg, err := postgres.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	db := pg.DB()

	neo, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init neo4j: %w", err)
	}

	cache, err := redisdb.NewCache(log)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", "error", err)
		cache = nil
	}

	detector := seriesdetect.New()
	if cfg.SeriesPatternsFile != "" {
		if err := detector.LoadPatternsFile(cfg.SeriesPatternsFile); err != nil {
			log.Sync()
			return nil, fmt.Errorf("load series patterns: %w", err)
		}
	}

	bookRepo := catalog.NewBookRepo(db, log)
	seriesRepo := catalog.NewSeriesRepo(db, log)
	userRepo := catalog.NewUserRepo(db, log)

	store := graph.NewNeo4jStore(neo, log)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Warn("graph schema setup failed", "error", err)
	}

	graphSync := services.NewGraphSyncService(bookRepo, store, detector, log)
	recs := services.NewRecommendationService(bookRepo, store, cache, log)
	maint := services.NewMaintenanceService(bookRepo, store, log)
	auth := services.NewAuthService(userRepo, cfg.Auth, log)
	books := services.NewBookService(bookRepo, graphSync, log)
	series := services.NewSeriesService(seriesRepo, store, log)

	authMW := httpMW.NewAuthMiddleware(auth, log)
	router := httpx.NewRouter(httpx.RouterConfig{
		ServiceName:           cfg.ServiceName,
		AuthHandler:           httpH.NewAuthHandler(auth, log),
		AuthMiddleware:        authMW,
		BookHandler:           httpH.NewBookHandler(books, log),
		SeriesHandler:         httpH.NewSeriesHandler(series, log),
		RecommendationHandler: httpH.NewRecommendationHandler(recs, graphSync, log),
		MaintenanceHandler:    httpH.NewMaintenanceHandler(maint, graphSync, log),
		HealthHandler:         httpH.NewHealthHandler(),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           db,
		Neo4j:        neo,
		Cache:        cache,
		Router:       router,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	a.Log.Info("starting server", "port", a.Cfg.Port)
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.Neo4j != nil {
		if err := a.Neo4j.Close(ctx); err != nil {
			a.Log.Warn("neo4j close failed", "error", err)
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
