package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/landman/api/internal/config"
	"github.com/stwalsh4118/landman/api/internal/database"
	"github.com/stwalsh4118/landman/api/internal/handlers"
	"github.com/stwalsh4118/landman/api/internal/logger"
	"github.com/stwalsh4118/landman/api/internal/metrics"
	"github.com/stwalsh4118/landman/api/internal/middleware"
	"github.com/stwalsh4118/landman/api/internal/repository"
	"github.com/stwalsh4118/landman/api/internal/resolution"
	"github.com/stwalsh4118/landman/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Landman API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"registry":    cfg.Registry.Backend,
	})

	ctx := context.Background()
	repo, closeRepo := openRegistry(ctx, cfg, log)
	defer closeRepo()

	resolver, err := resolution.NewResolver(repo, cfg.Resolver)
	if err != nil {
		log.Fatal("Invalid resolver configuration", err, nil)
	}

	// Initialize service layers
	m := metrics.New()
	parseService := services.NewParseService(cfg.Parse.Workers, m, log)
	registryService := services.NewRegistryService(repo, resolver, m, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> Metrics -> CORS -> BodyLimit
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.BodyLimit(cfg.Parse.MaxUploadBytes))

	// Register health check and metrics routes
	healthHandler := handlers.NewHealthHandler(registryService, cfg.Server.Env, cfg.Registry.Backend)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Initialize handlers
	parseHandler := handlers.NewParseHandler(parseService, registryService, cfg.Parse.MaxUploadBytes)
	entityHandler := handlers.NewEntityHandler(registryService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/exhibit-a/parse", parseHandler.ExhibitA)
		v1.POST("/title/parse", parseHandler.Title)
		v1.POST("/revenue/parse", parseHandler.Revenue)

		entities := v1.Group("/entities")
		{
			entities.GET("", entityHandler.Search)
			entities.POST("/resolve", entityHandler.Resolve)
			entities.GET("/:id", entityHandler.Get)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}

// openRegistry builds the configured entity registry. The returned func
// releases whatever the backend holds open.
func openRegistry(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.EntityRepository, func()) {
	if cfg.Registry.Backend != config.BackendPostgres {
		log.Info("Using in-memory entity registry", nil)
		return repository.NewMemoryRepository(), func() {}
	}

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		log.Fatal("Failed to apply registry schema", err, nil)
	}

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})
	return repository.NewPostgresRepository(db), db.Close
}
