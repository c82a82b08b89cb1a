// Package config loads svgtidy settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Optimizer  OptimizerConfig
	Playground PlaygroundConfig
	Server     ServerConfig
	Cache      CacheConfig
	Log        LogConfig

	// Warnings collects problems that fell back to a default. They are
	// reported once a logger exists.
	Warnings []string
}

type OptimizerConfig struct {
	WasmPath    string
	PoolSize    int
	MemoryPages uint32
	CacheDir    string
}

type PlaygroundConfig struct {
	SettleQuantum time.Duration
}

type ServerConfig struct {
	Port          string
	MaxInputBytes int64
	AllowOrigins  []string
}

type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads .env files (missing ones are fine) and then the environment.
func Load(files ...string) (*Config, error) {
	cfg := &Config{}
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		cfg.warn("env file not loaded: %v", err)
	}

	cfg.Optimizer = OptimizerConfig{
		WasmPath:    getEnv("SVGTIDY_WASM", "svgtidy.wasm"),
		PoolSize:    cfg.getEnvAsInt("SVGTIDY_POOL_SIZE", 4),
		MemoryPages: uint32(cfg.getEnvAsInt("SVGTIDY_MEMORY_PAGES", 1024)),
		CacheDir:    getEnv("SVGTIDY_CACHE_DIR", ""),
	}
	cfg.Playground = PlaygroundConfig{
		SettleQuantum: cfg.getEnvAsDuration("SVGTIDY_SETTLE_QUANTUM", 16*time.Millisecond),
	}
	cfg.Server = ServerConfig{
		Port:          getEnv("PORT", "8080"),
		MaxInputBytes: int64(cfg.getEnvAsInt("MAX_INPUT_BYTES", 1<<20)),
		AllowOrigins:  getEnvAsList("CORS_ORIGINS"),
	}
	cfg.Cache = CacheConfig{
		RedisAddr: getEnv("REDIS_ADDR", ""),
		TTL:       cfg.getEnvAsDuration("CACHE_TTL", time.Hour),
	}
	cfg.Log = LogConfig{
		Level: getEnv("LOG_LEVEL", "info"),
		File:  getEnv("SVGTIDY_LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Optimizer.WasmPath == "" {
		return fmt.Errorf("SVGTIDY_WASM is required")
	}
	if c.Optimizer.PoolSize < 1 {
		return fmt.Errorf("SVGTIDY_POOL_SIZE must be at least 1, got %d", c.Optimizer.PoolSize)
	}
	if c.Optimizer.MemoryPages > 65536 {
		return fmt.Errorf("SVGTIDY_MEMORY_PAGES must be at most 65536, got %d", c.Optimizer.MemoryPages)
	}
	if c.Playground.SettleQuantum <= 0 {
		return fmt.Errorf("SVGTIDY_SETTLE_QUANTUM must be positive")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.MaxInputBytes <= 0 {
		return fmt.Errorf("MAX_INPUT_BYTES must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		c.warn("invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func (c *Config) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		c.warn("invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
