// main wires high-level dependencies for the Cart API server and keeps the
// lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/twmb/franz-go/pkg/kgo"

	"domcart/internal/events"
	"domcart/internal/jwttoken"
	"domcart/internal/platform/config"
	"domcart/internal/platform/httpserver"
	"domcart/internal/platform/logger"
	platformredis "domcart/internal/platform/redis"
	"domcart/internal/server"
	"domcart/internal/server/cache"
	"domcart/internal/server/handler"
	"domcart/internal/server/metrics"
	"domcart/internal/server/service"
	"domcart/internal/server/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cartStore, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var cartCache cache.CartCache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cartCache = cache.NewRedisCache(redisClient.Client, cfg.Redis.CacheTTL)
	}

	var publisher *events.Publisher
	if len(cfg.KafkaSeeds) > 0 {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.KafkaSeeds...),
			kgo.DefaultProduceTopic(cfg.CheckoutTopic),
		)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()

		publisher = events.NewPublisher(kafkaClient, cfg.CheckoutTopic, 256, log)
		go func() {
			if err := publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event publisher stopped", "error", err)
			}
		}()
	}

	m := metrics.New()
	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "domcart", "domcart-api")

	var svc handler.Service = service.NewCartService(cartStore, cartCache, nilSafePublisher(publisher), log, m)
	h := handler.New(svc, log, m)
	router := server.NewRouter(h, jwttoken.ValidatorAdapter{Service: jwtService}, log)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting cart api", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// buildStore picks postgres when a DSN is configured and the in-memory
// store otherwise.
func buildStore(ctx context.Context, cfg config.Server) (store.CartStore, func(), error) {
	if cfg.PostgresDSN == "" {
		return store.NewInMemoryStore(), func() {}, nil
	}

	migrateDB, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(migrateDB); err != nil {
		migrateDB.Close()
		return nil, nil, err
	}
	migrateDB.Close()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgresStore(pool), pool.Close, nil
}

// nilSafePublisher keeps the service's publisher field a true nil interface
// when events are not configured.
func nilSafePublisher(p *events.Publisher) service.CheckoutPublisher {
	if p == nil {
		return nil
	}
	return p
}
