package kvstore

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/redis/go-redis/v9"
)

// ErrMissingRedisURL means no Redis connection information could be
// resolved from the environment. This is fatal at first use: the store is
// never silently defaulted.
var ErrMissingRedisURL = errors.New("kvstore: REDIS_URL not set in environment")

// EnvConfig is the environment contract for the Redis connection.
// REDIS_URL is required; REDIS_DB and REDIS_MAX_CONNECTIONS override the
// corresponding fields parsed from the URL.
type EnvConfig struct {
	URL            string `env:"REDIS_URL"`
	DB             int    `env:"REDIS_DB" env-default:"-1"`
	MaxConnections int    `env:"REDIS_MAX_CONNECTIONS"`
}

// FromEnv reads the process environment and returns connection options
// for NewRedis. The pool size applies per process; size it against your
// Redis instance's connection limit times the number of workers you run.
func FromEnv() (*redis.Options, error) {
	var cfg EnvConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("kvstore: read env: %w", err)
	}
	return cfg.Options()
}

// Options resolves the config into go-redis connection options.
func (cfg EnvConfig) Options() (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrMissingRedisURL
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("kvstore: parse REDIS_URL: %w", err)
	}
	if cfg.DB >= 0 {
		opts.DB = cfg.DB
	}
	if cfg.MaxConnections > 0 {
		opts.PoolSize = cfg.MaxConnections
	}
	return opts, nil
}
