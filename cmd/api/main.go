package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"cv-portfolio/internal/config"
	"cv-portfolio/internal/db"
	apihttp "cv-portfolio/internal/http"
	"cv-portfolio/internal/llm"
	"cv-portfolio/internal/repository"
	"cv-portfolio/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		analysisRepo  repository.AnalysisRepository
		portfolioRepo repository.PortfolioRepository
	)
	pool, err := db.NewPool(ctx, cfg)
	switch {
	case errors.Is(err, db.ErrDatabaseNotConfigured):
		logger.Warn("database not configured, results will not be stored")
	case err != nil:
		logger.Fatal("db connect", zap.Error(err))
	default:
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		analysisRepo = repository.NewPgAnalysisRepository(pool)
		portfolioRepo = repository.NewPgPortfolioRepository(pool)
	}

	var (
		responseCache llm.ResponseCache
		limiter       service.RateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			responseCache = llm.NewRedisResponseCache(redisClient, cfg.LLMCacheTTL, logger)
			limiter = service.NewRedisRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax, logger)
		}
		cancel()
	}

	registry := llm.NewModelRegistry(llm.TransportKind(cfg.LLMTransport), cfg.LLMDefaultModel, cfg.TaskModelOverrides(), logger)
	if err := registry.CheckTransport(); err != nil {
		logger.Fatal("llm model config", zap.Error(err))
	}
	transport, err := llm.NewTransport(ctx, llm.TransportOptions{
		Kind:    llm.TransportKind(cfg.LLMTransport),
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("llm transport", zap.Error(err))
	}

	retryPolicy := llm.RetryAll
	if cfg.LLMRetryTransientOnly {
		retryPolicy = llm.RetryTransientOnly
	}
	gateway := llm.NewGateway(registry, transport, llm.GatewayConfig{
		MaxRetries:  cfg.LLMMaxRetries,
		RetryDelay:  cfg.LLMRetryDelay,
		RetryPolicy: retryPolicy,
		Cache:       responseCache,
	}, logger)

	extractionModel := registry.GetRecommendedModel(llm.TaskCVExtraction)
	portfolioModel := registry.GetRecommendedModel(llm.TaskPortfolioGeneration)
	extractionSvc := service.NewExtractionService(gateway, extractionModel, logger)
	portfolioSvc := service.NewPortfolioService(gateway, portfolioModel, logger)

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	if !jwtSvc.Enabled() {
		logger.Warn("jwt secret not configured, api is unauthenticated")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:    logger,
		JWT:       jwtSvc,
		Limiter:   limiter,
		CV:        apihttp.NewCVHandler(logger, extractionSvc, analysisRepo, extractionModel),
		Portfolio: apihttp.NewPortfolioHandler(logger, portfolioSvc, analysisRepo, portfolioRepo),
		Models:    apihttp.NewModelsHandler(registry),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("transport", cfg.LLMTransport),
		zap.String("extraction_model", extractionModel),
		zap.String("portfolio_model", portfolioModel),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
