// api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brightside/api/database"
	"brightside/api/handlers"
	"brightside/api/logger"
	"brightside/api/middleware"
	"brightside/api/store"
	"brightside/api/utils"
)

func main() {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("No .env file loaded")
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// PostgreSQL holds the mutable rows (sessions, form submissions).
	dbClient, err := database.NewPostgresDB(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize PostgreSQL")
	}
	defer dbClient.Close()

	// ClickHouse holds the append-only fact rows (page views, events).
	chClient, err := database.NewClickHouseDB(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize ClickHouse")
	}
	defer chClient.Close()

	sessionStore := store.NewSessionStore(dbClient.DB)
	formStore := store.NewFormStore(dbClient.DB)
	factStore := store.NewFactStore(chClient, log)

	dedupWindow := utils.MinutesFromEnv("DEDUP_WINDOW_MINUTES", 5)
	liveWindow := utils.MinutesFromEnv("LIVE_WINDOW_MINUTES", 5)

	trackHandlers := handlers.NewTrackHandlers(factStore, sessionStore, formStore, dedupWindow, log)
	adminHandlers := handlers.NewAdminHandlers(factStore, sessionStore, formStore, liveWindow, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.Metrics())
	r.HandleMethodNotAllowed = true

	api := r.Group("/api")
	{
		// Ingestion endpoints, called fire-and-forget by the browser agent.
		api.POST("/track-page-view", trackHandlers.TrackPageView)
		api.POST("/track-event", trackHandlers.TrackEvent)
		api.POST("/submit-form", trackHandlers.SubmitForm)

		// Reporting endpoints consumed by the admin dashboard.
		admin := api.Group("/admin")
		{
			admin.GET("/stats", adminHandlers.GetStats)
			admin.GET("/realtime", adminHandlers.GetRealtime)
			admin.GET("/signups", adminHandlers.ExportSignups)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Infof("Analytics API listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exiting")
}
