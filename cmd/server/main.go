package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soulchat-backend/internal/ai"
	"soulchat-backend/internal/api"
	"soulchat-backend/internal/config"
	"soulchat-backend/internal/handlers"
	"soulchat-backend/internal/observability"
	"soulchat-backend/internal/services"
	"soulchat-backend/internal/store"
	"soulchat-backend/internal/store/memory"
	"soulchat-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log.Println("Starting SoulChat Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Store
	var chatStore store.Store
	if cfg.DatabaseURL != "" {
		dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dbCancel()

		dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
		}
		defer dbpool.Close()

		if err := dbpool.Ping(dbCtx); err != nil {
			log.Fatalf("FATAL: Unable to ping database: %v\n", err)
		}
		log.Println("Database connection pool established and pinged successfully.")

		chatStore = postgres.NewPostgresStore(dbpool)
		log.Println("Postgres store initialized.")
	} else {
		chatStore = memory.NewMemoryStore()
		log.Println("In-memory store initialized (no DATABASE_URL set).")
	}

	// 3. Initialize Dependencies (Responder, Metrics, Services, Handlers)
	responder := ai.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.AIRequestTimeout)
	log.Println("AI responder client initialized.")

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	log.Println("Prometheus metrics registered.")

	authService := services.NewAuthService(chatStore, cfg)
	log.Println("AuthService initialized.")
	chatService := services.NewChatService(chatStore, responder, metrics)
	log.Println("ChatService initialized.")
	historyService := services.NewHistoryService(chatStore)
	log.Println("HistoryService initialized.")
	statsService := services.NewStatsService(chatStore)
	log.Println("StatsService initialized.")

	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandlers(chatService)
	historyHandler := handlers.NewHistoryHandlers(historyService, statsService)
	log.Println("Handlers initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		AuthHandler:    authHandler,
		ChatHandler:    chatHandler,
		HistoryHandler: historyHandler,
		Config:         cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
		log.Fatal("Forcing shutdown due to error.")
	}

	log.Println("Server shutdown complete.")
}
