// Package config loads the server configuration from the environment.
package config

import (
	"log"
	"os"
)

// Backend selectors
const (
	BackendDynamo = "dynamo"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port         string
	StoreBackend string // dynamo | memory
	FeedBackend  string // redis | memory
	AWSRegion    string
	RedisAddr    string
	JWTSecret    string
}

// Load reads the configuration once at startup.
func Load() Config {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		StoreBackend: getenv("STORE_BACKEND", BackendDynamo),
		FeedBackend:  getenv("FEED_BACKEND", BackendRedis),
		AWSRegion:    getenv("AWS_REGION", "us-east-1"),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
	}

	if cfg.JWTSecret == "" {
		log.Println("⚠️ JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "dev-secret"
	}
	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
