package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"janus/docs"
	"janus/internal/assets"
	"janus/internal/auth"
	"janus/internal/cache"
	"janus/internal/classifier"
	"janus/internal/config"
	"janus/internal/db"
	"janus/internal/handler"
	"janus/internal/logging"
	"janus/internal/repository"
	"janus/internal/router"
	"janus/internal/service"
)

// @title Janus Emotion Detection API
// @version 1.0
// @description Quota-gated demo API that detects the emotion expressed in a short English text.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		fatal(logger, "database init", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		fatal(logger, "database migrate", err)
	}

	accountRepo := repository.NewAccountRepository(gormDB)
	accountService := service.NewAccountService(accountRepo)

	if cfg.SeedFile != "" {
		seeds, err := config.LoadSeedAccounts(cfg.SeedFile, cfg.InitialQuota)
		if err != nil {
			fatal(logger, "load seed accounts", err)
		}
		created, skipped, err := accountService.SeedAccounts(ctx, seeds)
		if err != nil {
			fatal(logger, "seed accounts", err)
		}
		logger.Info("seed accounts", "created", created, "existing", skipped)
	}

	var sessions auth.SessionStore
	if cfg.RedisAddr != "" {
		cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cacheClient.Close()
		if err := cacheClient.Ping(ctx); err != nil {
			fatal(logger, "redis ping", err)
		}
		sessions = auth.NewRedisSessionStore(cacheClient)
		logger.Info("session store", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		sessions = auth.NewMemorySessionStore()
		logger.Info("session store", "backend", "memory")
	}

	if cfg.ModelID == "" {
		logger.Warn("ID_MODEL_OPENAI is not set; classification requests will fail")
	}

	logo, assetErr := assets.LoadImage(cfg.LogoPath)
	if assetErr != nil {
		logger.Warn("display asset unavailable", "error", assetErr)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)

	// Initialize services
	authService := service.NewAuthService(accountRepo, jwtService, sessions)
	classificationService := service.NewClassificationService(
		authService,
		accountService,
		classifier.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL),
		service.ClassificationConfig{
			ModelID:         cfg.ModelID,
			Timeout:         cfg.ClassifyTimeout,
			RefundOnFailure: cfg.RefundOnFailure,
		},
		logger,
	)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(
		e,
		logger,
		jwtService,
		authService,
		handler.NewAuthHandler(authService, logger),
		handler.NewClassifyHandler(classificationService, logger),
		handler.NewStatusHandler(logo, assetErr),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Info("server listening", "addr", addr, "swagger", "/swagger/index.html")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			fatal(logger, "server start", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("server stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
