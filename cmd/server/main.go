package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vn.io.terango/notifier/internal/application"
	"vn.io.terango/notifier/internal/bridge"
	"vn.io.terango/notifier/internal/cache"
	"vn.io.terango/notifier/internal/config"
	"vn.io.terango/notifier/internal/domain"
	"vn.io.terango/notifier/internal/effects"
	"vn.io.terango/notifier/internal/infrastructure/postgreskv"
	"vn.io.terango/notifier/internal/infrastructure/sqlitekv"
	kafkaingest "vn.io.terango/notifier/internal/ingest/kafka"
	transporthttp "vn.io.terango/notifier/internal/transport/http"
	"vn.io.terango/notifier/internal/transport/socket"
)

// feedKey is the fixed KV key holding the serialized notification feed.
const feedKey = "terango_admin_notifications"

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("env", cfg.Server.Env).
		Str("port", cfg.Server.Port).
		Str("role", cfg.Bridge.Role).
		Msg("starting terango-notifier")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Feed persistence ─────────────────────────────────────────────────────
	var kv domain.KV
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Storage.Postgres.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		kv, err = postgreskv.New(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize postgres kv store")
		}
		log.Info().Msg("postgres feed storage ready")
	default:
		kv, err = sqlitekv.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite kv store")
		}
		log.Info().Str("path", cfg.Storage.SQLitePath).Msg("sqlite feed storage ready")
	}
	defer kv.Close()

	feed := application.NewFeed(ctx, kv, feedKey)

	// ── Cache invalidation & SSE Hub ─────────────────────────────────────────
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	defer rdb.Close()
	invalidator := cache.NewRedisInvalidator(rdb)

	hub := transporthttp.NewHub()

	// ── Effect Pipeline & Bridge ──────────────────────────────────────────────
	role := domain.Role(cfg.Bridge.Role)
	beeper := effects.NewBeeper("TeranGo Notifier")
	pipeline := effects.NewPipeline(role, feed, beeper, beeper, hub, invalidator, nil)

	br := bridge.New(socket.New(cfg.Upstream.SocketURL), pipeline, bridge.Options{
		Role:          role,
		VendorID:      cfg.Bridge.VendorID,
		Enabled:       cfg.Bridge.Enabled,
		RetryAttempts: cfg.Upstream.RetryAttempts,
		RetryDelay:    cfg.Upstream.RetryDelay,
	})
	go br.Start(ctx)

	// ── Kafka order-event mirror (optional) ───────────────────────────────────
	if cfg.Kafka.Enabled {
		consumer, err := kafkaingest.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroupID, cfg.Kafka.Topics, br)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create kafka consumer")
		}
		go consumer.Start(ctx)
		log.Info().Strs("topics", cfg.Kafka.Topics).Msg("kafka order-event mirror started")
	}

	// ── HTTP Server ───────────────────────────────────────────────────────────
	handler := transporthttp.NewHandler(feed, hub, br)
	router := transporthttp.NewRouter(handler, cfg.Auth.JWTSecret)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := router.Start(":" + cfg.Server.Port); err != nil {
			log.Info().Msg("HTTP server stopped")
		}
	}()

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	// Leave the room and close the socket before anything else so membership
	// is never leaked server-side.
	br.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("terango-notifier stopped")
}
