package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/config"
	"fieldops-backend/internal/database"
	"fieldops-backend/internal/db"
	"fieldops-backend/internal/handlers"
	"fieldops-backend/internal/health"
	h "fieldops-backend/internal/http"
	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/services"
	"fieldops-backend/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (caching and training capture disabled)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations on startup
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize photo storage (optional - receipts omit photo links without it)
	photoStore, err := storage.NewPhotoStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}
	if photoStore == nil {
		log.Println("[Storage] Photo storage not configured, presigned URLs disabled")
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	jobRepo := repositories.NewJobRepository(pool)
	unitEntryRepo := repositories.NewUnitEntryRepository(pool)
	priceBookRepo := repositories.NewPriceBookRepository(pool)
	auditLogRepo := repositories.NewAuditLogRepository(pool)

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	trainingCapture := services.NewRedisTrainingCapture(cache.GetClient())
	jobService := services.NewJobService(jobRepo, auditLogRepo, trainingCapture)
	unitEntryService := services.NewUnitEntryService(unitEntryRepo, priceBookRepo, jobRepo, auditLogRepo)
	receiptService := services.NewReceiptPDFService()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	jobHandler := handlers.NewJobHandler(jobService)
	unitEntryHandler := handlers.NewUnitEntryHandler(unitEntryService, jobService, receiptService, photoStore)
	priceBookHandler := handlers.NewPriceBookHandler(priceBookRepo)
	auditLogHandler := handlers.NewAuditLogHandler(auditLogRepo)
	healthHandler := handlers.NewHealthHandler(healthChecker)
	monitoringHandler := handlers.NewMonitoringHandler(pool)

	// Build router
	router := h.NewRouter(
		authHandler,
		userHandler,
		jobHandler,
		unitEntryHandler,
		priceBookHandler,
		auditLogHandler,
		healthHandler,
		monitoringHandler,
		authMiddleware,
	)

	// Wrap with panic recovery, metrics, request logging and CORS
	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.RequestLogging(
				corsMiddleware(router))))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
