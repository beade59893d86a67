package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/config"
	"driver-rewards/internal/database"
	"driver-rewards/internal/ebay"
	"driver-rewards/internal/jobs"
	"driver-rewards/internal/logger"
	"driver-rewards/internal/router"
	"driver-rewards/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.App.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret, cfg.App.TokenTTL)
	auth.CookieName = cfg.App.CookieName

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	var searcher ebay.Searcher = ebay.Mock{}
	if cfg.Ebay.ClientID != "" {
		searcher = ebay.NewClientFromCredentials(cfg.Ebay.BaseURL, cfg.Ebay.ClientID, cfg.Ebay.ClientSecret, cfg.Ebay.Scope)
		logger.Log.Info("Using eBay Browse API", zap.String("base_url", cfg.Ebay.BaseURL))
	} else {
		logger.Log.Info("EBAY_CLIENT_ID not set, using mock marketplace")
	}

	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.New(router.Deps{
		DB:       database.GetDB(),
		Config:   cfg,
		Searcher: searcher,
	})
	if err != nil {
		logger.Log.Fatal("Failed to build router", zap.Error(err))
	}

	if cfg.Server.StatsEvery > 0 {
		refresher := jobs.NewStatsRefresher(services.NewAdminService(database.GetDB()), cfg.Server.StatsEvery)
		go refresher.Start()
		defer refresher.Stop()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("Server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("role", cfg.Server.Role),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownWait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
