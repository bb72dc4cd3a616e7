package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/bookshelf/internal/handlers"
	"github.com/alimgiray/bookshelf/internal/middleware"
	"github.com/alimgiray/bookshelf/internal/repositories"
	"github.com/alimgiray/bookshelf/internal/services"
	"github.com/alimgiray/bookshelf/pkg/config"
	"github.com/alimgiray/bookshelf/pkg/database"
	"github.com/alimgiray/bookshelf/pkg/logger"
	"github.com/alimgiray/bookshelf/web"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize dependencies
	authorRepo := repositories.NewAuthorRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	coverService := services.NewCoverService(cfg.Cover)
	exportService := services.NewExportService()
	catalogService := services.NewCatalogService(authorRepo, bookRepo, coverService, exportService)
	flashStore := middleware.NewFlashStore(cfg.Session.Secret)

	if cfg.Cover.APIKey == "" {
		logger.GetLogger().Warn("COVER_API_KEY is not set, new books will have blank covers")
	}
	if cfg.Session.UsesDefaultSecret() {
		logger.GetLogger().Warn("SESSION_SECRET is not set, flash cookies are signed with the built-in default")
	}

	// Initialize router
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery(), flashStore.Middleware())

	tmpl, err := web.Templates()
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", http.FS(web.Static()))

	handlers.RegisterRoutes(router,
		handlers.NewCatalogHandler(catalogService, flashStore),
		handlers.NewExportHandler(catalogService),
		handlers.NewHealthHandler(db),
		handlers.NewNotFoundHandler(),
	)

	// Setup server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
