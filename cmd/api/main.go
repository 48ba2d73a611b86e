package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pantryml/recipegen/config"
	"github.com/pantryml/recipegen/internal/api"
	"github.com/pantryml/recipegen/internal/database"
	"github.com/pantryml/recipegen/internal/router"
	"github.com/pantryml/recipegen/internal/server"
	"github.com/pantryml/recipegen/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.String("project", cfg.ProjectName),
		zap.String("version", cfg.Version))

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}

	llmService := service.NewLLMService(cfg, logger)
	embeddingService := service.NewEmbeddingService(cfg, logger)
	recipeService := service.NewRecipeService(db, redisClient, logger)

	recipeHandler := api.NewRecipeHandler(llmService, embeddingService, recipeService, logger)
	engine := router.SetupRouter(recipeHandler, cfg.CORSOrigins)

	srv := server.New(engine, cfg.ServerHost, cfg.ServerPort, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	logger.Info("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
