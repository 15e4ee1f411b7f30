package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/somonity/accounts/config"
	"github.com/somonity/accounts/internal/handler"
	"github.com/somonity/accounts/internal/middleware"
	"github.com/somonity/accounts/internal/repository"
	"github.com/somonity/accounts/internal/router"
	"github.com/somonity/accounts/internal/service"
	"github.com/somonity/accounts/pkg/database"
	"github.com/somonity/accounts/pkg/logger"
	redisclient "github.com/somonity/accounts/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 10,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db); err != nil {
		logger.GetLogger().Fatal("Failed to seed role catalog", zap.Error(err))
	}
	logger.GetLogger().Info("Database seeded successfully")

	cache, err := redisclient.NewClient(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer cache.Close()

	logger.GetLogger().Info("Claim cache initialized",
		zap.Bool("enabled", cache.Enabled()),
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)

	// Services
	hasher := service.NewHashService()
	jwtService := service.NewJWTService(config.JWT, userRepo, cache)
	resetCodes := service.NewResetCodeManager(userRepo)
	mailer := service.NewEmailService(config.SMTP)
	accountService := service.NewAccountService(userRepo, hasher, jwtService, resetCodes, mailer)

	// Handlers and middleware
	accountHandler := handler.NewAccountHandler(accountService)
	healthHandler := handler.NewHealthHandler(db)
	jwtMw := middleware.NewJWTMiddleware(jwtService)

	engine := router.NewRouter(accountHandler, healthHandler, jwtMw, config).SetupRoutes()

	server := &http.Server{
		Addr:    ":" + config.App.Port,
		Handler: engine,
	}

	go func() {
		logger.GetLogger().Info("HTTP server listening", zap.String("port", config.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.GetLogger().Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Server forced to shutdown", zap.Error(err))
	}

	logger.GetLogger().Info("Server exited")
}
