package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/aidebate/arena/api"
	"github.com/aidebate/arena/config"
	"github.com/aidebate/arena/debate"
	"github.com/aidebate/arena/internal/log"
	"github.com/aidebate/arena/llm"
	"github.com/aidebate/arena/policy"
	"github.com/aidebate/arena/store"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Init(cfg.LogLevel)
	defer log.Sync()

	log.Info("starting debate arena",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("database", cfg.DatabaseURL),
		zap.String("llm_base_url", cfg.LLMBaseURL),
		zap.String("llm_model", cfg.LLMModel))

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	// Initialize LLM gateway
	client := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.Temperature, cfg.MaxTokens, cfg.LLMTimeout)

	// Initialize policy engine
	ctx := context.Background()
	policySource := cfg.AdmissionPolicy
	if policySource == "" {
		policySource = policy.DefaultPolicy
	}
	policyEngine, err := policy.NewEngine(ctx, policySource)
	if err != nil {
		log.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	// Initialize debate manager with the built-in roster
	manager := debate.NewManager(debate.DefaultRegistry(), client, llm.Options{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.LLMTimeout,
	})

	// Initialize handlers
	h := api.NewHandler(manager, db, policyEngine, client, cfg)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	log.Info("api started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", zap.Error(err))
	}

	log.Info("stopped")
}
