package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/config"
	"github.com/rtCamp/next-crm/internal/infrastructure/database"
	"github.com/rtCamp/next-crm/internal/infrastructure/storage"
	"github.com/rtCamp/next-crm/internal/interfaces/middleware"
	"github.com/rtCamp/next-crm/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	db, err := database.Open(startCtx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	blobs, err := storage.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}
	if blobs.Enabled() {
		if err := blobs.EnsureBucket(startCtx); err != nil {
			log.Fatalf("Failed to prepare bucket %s: %v", cfg.StorageBucket, err)
		}
		log.Printf("🪣 File storage ready (bucket %s)", cfg.StorageBucket)
	} else {
		log.Println("⚠️  File storage not configured, uploads are disabled")
	}

	svcMgr := services.NewServiceManager(db, blobs)
	log.Println("🔧 Service manager initialized")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	router := newRouter(svcMgr, auth.NewTokenManager(cfg.JWTSecret, 0), metrics)

	log.Printf("🚀 Server listening on :%s", cfg.Port)
	log.Printf("💚 Health check:   http://localhost:%s/health", cfg.Port)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	svcMgr.Close()
	if err := db.Close(); err != nil {
		log.Printf("⚠️  Failed to close database: %v", err)
	}
	log.Println("Server exiting")
}
