package config

import (
	"os"
	"strings"
	"time"
)

// Server captures everything cmd/server needs so main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string
	PostgresDSN   string
	Redis         RedisConfig
	KafkaSeeds    []string
	CheckoutTopic string
}

// RedisConfig tunes the optional cart cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// FromEnv builds a Server config from environment variables. Postgres, Redis
// and Kafka are all optional: without them the server falls back to its
// in-memory store, no cache, and no event publishing, which is enough for
// local development.
func FromEnv() Server {
	addr := os.Getenv("DOMCART_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("DOMCART_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in any real deployment.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("DOMCART_CHECKOUT_TOPIC")
	if topic == "" {
		topic = "cart.checkouts"
	}

	var seeds []string
	if raw := os.Getenv("DOMCART_KAFKA_SEEDS"); raw != "" {
		for _, seed := range strings.Split(raw, ",") {
			if seed = strings.TrimSpace(seed); seed != "" {
				seeds = append(seeds, seed)
			}
		}
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresDSN:   os.Getenv("DOMCART_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("DOMCART_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     15 * time.Minute,
		},
		KafkaSeeds:    seeds,
		CheckoutTopic: topic,
	}
}
