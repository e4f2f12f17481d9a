// File: utils/cache.go
package utils

import (
	"concierge/config"
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient is the dedicated client for dialog session storage.
	SessionCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client for dialog sessions
// (using DB from AppConfig).
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Sessions): %v", err)
	}
}

// GetSessionCacheClient returns the Redis client for dialog sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}
