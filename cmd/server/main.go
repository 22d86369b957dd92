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

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/config"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/database"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/handlers"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/middleware"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/preview"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/services"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/session"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/store"
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
	log.Info("Starting Sponsorship Hub API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"store":       string(cfg.Store.Driver),
	})

	ctx := context.Background()

	// Select the record store backend
	var recordStore store.Store
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgresPool(ctx, cfg.Store)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Store.Host,
				"port": cfg.Store.Port,
				"name": cfg.Store.Name,
			})
		}
		defer db.Close()

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Store.Host,
			"port":     cfg.Store.Port,
			"database": cfg.Store.Name,
			"pool_min": cfg.Store.PoolMin,
			"pool_max": cfg.Store.PoolMax,
		})
		recordStore = store.NewPostgres(db)
	default:
		log.Info("Using in-memory record store; changes will not survive a restart", nil)
		recordStore = store.NewMemory()
	}

	// Load the city catalog, seeding the Las Vegas hub on first run
	catalog := services.NewCatalogService(recordStore, log)
	if err := catalog.Load(ctx); err != nil {
		log.Fatal("Failed to load city catalog", err, nil)
	}

	gate := services.NewGateService(catalog, cfg.Admin, log)

	// Preview hub fans live edits out to websocket clients
	hub := preview.NewHub(log)
	go hub.Run()

	manager := session.NewManager(catalog, hub, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(recordStore, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize handlers
	siteHandler := handlers.NewSiteHandler(catalog, gate)
	adminHandler := handlers.NewAdminHandler(catalog, gate)
	sessionHandler := handlers.NewSessionHandler(manager, hub)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/sites", siteHandler.List)
		v1.GET("/sites/:id", siteHandler.Get)
		v1.POST("/gate", siteHandler.Gate)

		admin := v1.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)
			admin.GET("/cities", adminHandler.Cities)
			admin.POST("/cities", adminHandler.CreateCity)
			admin.POST("/cities/:cityID/sponsors", adminHandler.CreateSponsor)
			admin.POST("/archive", adminHandler.RequestArchive)
			admin.POST("/archive/confirm", adminHandler.ConfirmArchive)
			admin.POST("/archive/cancel", adminHandler.CancelArchive)

			sessions := admin.Group("/sessions")
			{
				sessions.POST("", sessionHandler.Open)
				sessions.GET("/:id", sessionHandler.Get)
				sessions.DELETE("/:id", sessionHandler.Discard)
				sessions.PUT("/:id/name", sessionHandler.SetName)
				sessions.PUT("/:id/fields", sessionHandler.UpdateField)
				sessions.PUT("/:id/sponsor", sessionHandler.UpdateSponsorField)
				sessions.POST("/:id/markers", sessionHandler.AddMarker)
				sessions.PATCH("/:id/markers/:itemID", sessionHandler.UpdateMarker)
				sessions.DELETE("/:id/markers/:itemID", sessionHandler.RemoveMarker)
				sessions.POST("/:id/callouts", sessionHandler.AddCallout)
				sessions.PATCH("/:id/callouts/:itemID", sessionHandler.UpdateCallout)
				sessions.DELETE("/:id/callouts/:itemID", sessionHandler.RemoveCallout)
				sessions.POST("/:id/leaders", sessionHandler.AddLeader)
				sessions.PATCH("/:id/leaders/:itemID", sessionHandler.UpdateLeader)
				sessions.DELETE("/:id/leaders/:itemID", sessionHandler.RemoveLeader)
				sessions.PUT("/:id/wards/:index", sessionHandler.SetWardName)
				sessions.POST("/:id/drag", sessionHandler.BeginDrag)
				sessions.PUT("/:id/drag", sessionHandler.Drag)
				sessions.DELETE("/:id/drag", sessionHandler.EndDrag)
				sessions.POST("/:id/save", sessionHandler.Save)
				sessions.GET("/:id/preview/ws", sessionHandler.PreviewSocket)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
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
