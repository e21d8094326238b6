package main

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/automata"
	"github.com/meikuraledutech/automata/memory"
	"github.com/meikuraledutech/automata/postgres"
	redisstore "github.com/meikuraledutech/automata/redis"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is read from the environment.
type Config struct {
	Addr          string        `env:"AUTOMATA_ADDR"           envDefault:":3000"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	RedisAddr     string        `env:"AUTOMATA_REDIS_ADDR"`
	RedisPassword string        `env:"AUTOMATA_REDIS_PASSWORD"`
	RedisDB       int           `env:"AUTOMATA_REDIS_DB"       envDefault:"0"`
	RedisPrefix   string        `env:"AUTOMATA_REDIS_PREFIX"   envDefault:"automata:"`
	RedisTTL      time.Duration `env:"AUTOMATA_REDIS_TTL"`
	ContentFile   string        `env:"AUTOMATA_CONTENT_FILE"`
	LogLevel      string        `env:"AUTOMATA_LOG_LEVEL"      envDefault:"info"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// openStore picks Postgres, then Redis, then memory. The returned func
// releases the backend.
func openStore(ctx context.Context, cfg Config, log *zap.Logger) (automata.Store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		store := postgres.New(pool)
		if err := store.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("schema: %w", err)
		}
		log.Info("using postgres store")
		return store, pool.Close, nil

	case cfg.RedisAddr != "":
		opts := []redisstore.Option{redisstore.WithPrefix(cfg.RedisPrefix)}
		if cfg.RedisTTL > 0 {
			opts = append(opts, redisstore.WithTTL(cfg.RedisTTL))
		}
		store := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		log.Info("using redis store", zap.String("addr", cfg.RedisAddr))
		return store, func() { _ = store.Close() }, nil
	}

	log.Info("using in-memory store")
	return memory.NewStore(), func() {}, nil
}
