package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Port            string
	BodyLimit       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "8080"),
		BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 25*1024*1024),
		ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		Debug:           getEnvBool("DEBUG", false),
	}
}

// RedisConfig configures the Redis connection backing the job queue.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		Prefix:   getEnv("REDIS_PREFIX", "reactorbot"),
	}
}

// Address returns host:port.
func (c RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EngineConfig tunes dispatch and sweeps.
type EngineConfig struct {
	// Reactors lists the enabled reactors by name.
	Reactors         []string
	ReactorTimeout   time.Duration
	SweepConcurrency int
	SweepPerPage     int
	MetricsNamespace string
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		Reactors:         getEnvStringSlice("REACTORBOT_REACTORS", []string{"labeler", "status", "reminder"}),
		ReactorTimeout:   getEnvDuration("REACTORBOT_REACTOR_TIMEOUT", 30*time.Second),
		SweepConcurrency: getEnvInt("REACTORBOT_SWEEP_CONCURRENCY", 4),
		SweepPerPage:     getEnvInt("REACTORBOT_SWEEP_PER_PAGE", 50),
		MetricsNamespace: getEnv("REACTORBOT_METRICS_NAMESPACE", "reactorbot"),
	}
}
