package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/config"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/lock"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/obs"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/pricing"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/queue"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/quoting"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "pricing")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	quotingSvc := &quoting.Service{
		R:   redisClient,
		TTL: cfg.QuoteCacheTTL,
		Bounds: pricing.AdvisoryBounds{
			HotelCostMin: cfg.HotelCostMin,
			HotelCostMax: cfg.HotelCostMax,
		},
		Lock:    &lock.Locker{R: redisClient},
		LockTTL: cfg.QueueVisibilityTimeout,
	}

	recomputeWorker := queue.Worker{
		R:                 redisClient,
		Prefix:            cfg.QueueRedisPrefix,
		Kind:              quoting.TaskRecompute,
		Concurrency:       cfg.QueueConcurrency,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		RetryBase:         cfg.QueueBackoffBase,
		RetryJitter:       cfg.QueueBackoffJitter,
		Handler: func(jobCtx context.Context, task queue.Task) error {
			return quotingSvc.HandleRecompute(jobCtx, task.Payload)
		},
	}

	logger.Info().Msg("worker starting")
	if err := recomputeWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker stopped with error")
	} else {
		logger.Info().Msg("worker shutdown complete")
	}
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
