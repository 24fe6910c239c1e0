package main

import (
	"log"
	"os"
)

// Config holds all configuration for the worker process.
type Config struct {
	RedisAddr string
}

// loadConfig loads configuration from environment variables.
func loadConfig() *Config {
	cfg := &Config{
		RedisAddr: getEnvVariable("REDIS_HOST", "localhost:6379"),
	}

	log.Printf("[Config] Redis: %s", cfg.RedisAddr)
	return cfg
}

func getEnvVariable(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
