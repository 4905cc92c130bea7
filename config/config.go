// Package config reads the process settings that pick and size the cache
// backend. Values come from the environment, optionally seeded from dotenv
// files. The settings are read once at startup and handed to
// memocache.NewSelector; nothing in memocache reads the environment itself.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/xhit/go-str2duration/v2"
)

const (
	EnvRedisURL     = "REDIS_URL"
	EnvMemoRedisURL = "MEMOCACHE_REDIS_URL" // wins over REDIS_URL
	EnvPoolSize     = "MEMOCACHE_POOL_SIZE"
	EnvDialTimeout  = "MEMOCACHE_DIAL_TIMEOUT"
	EnvReadTimeout  = "MEMOCACHE_READ_TIMEOUT"
	EnvWriteTimeout = "MEMOCACHE_WRITE_TIMEOUT"
	EnvDefaultTTL   = "MEMOCACHE_DEFAULT_TTL"
	EnvLocalSize    = "MEMOCACHE_LOCAL_SIZE"
)

type Config struct {
	// RedisURL selects the shared redis backend ("redis://", "rediss://",
	// "unix://"). Empty means every memoized function caches in process.
	RedisURL string

	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	DefaultTTL time.Duration // TTL applications use when they have no better one
	LocalSize  int           // entry bound of each in-process fallback cache
}

// Default returns the pool shape used when nothing is configured:
// 10 connections, 5s connect/read/write timeouts.
func Default() Config {
	return Config{
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		DefaultTTL:   10 * time.Minute,
		LocalSize:    10_000,
	}
}

// Remote reports whether a redis endpoint is configured.
func (c Config) Remote() bool { return c.RedisURL != "" }

// FromEnv reads Config from the process environment.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

// Load seeds the environment from dotenv files, then reads it. With no
// arguments ".env" is tried. Missing files are skipped; variables already set
// in the environment are not overridden.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return Config{}, errors.Wrap(err, "config: load dotenv")
		}
	}
	return FromEnv()
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvRedisURL); ok {
		cfg.RedisURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvMemoRedisURL); ok && strings.TrimSpace(v) != "" {
		cfg.RedisURL = strings.TrimSpace(v)
	}

	var err error
	if cfg.PoolSize, err = intVar(lookup, EnvPoolSize, cfg.PoolSize); err != nil {
		return Config{}, err
	}
	if cfg.LocalSize, err = intVar(lookup, EnvLocalSize, cfg.LocalSize); err != nil {
		return Config{}, err
	}
	if cfg.DialTimeout, err = durationVar(lookup, EnvDialTimeout, cfg.DialTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = durationVar(lookup, EnvReadTimeout, cfg.ReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = durationVar(lookup, EnvWriteTimeout, cfg.WriteTimeout); err != nil {
		return Config{}, err
	}
	if cfg.DefaultTTL, err = durationVar(lookup, EnvDefaultTTL, cfg.DefaultTTL); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func intVar(lookup func(string) (string, bool), name string, def int) (int, error) {
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, errors.Newf("config: %s must be a positive integer, got %q", name, v)
	}
	return n, nil
}

// durationVar accepts "90s", "1d12h" and bare integers, which are seconds.
func durationVar(lookup func(string) (string, bool), name string, def time.Duration) (time.Duration, error) {
	v, ok := lookup(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, errors.Newf("config: %s must be positive, got %q", name, v)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := str2duration.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "config: %s", name)
	}
	if d <= 0 {
		return 0, errors.Newf("config: %s must be positive, got %q", name, v)
	}
	return d, nil
}
