// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"hobbyist/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the Redis client holding booking sessions and commit locks.
var CacheClient *redis.Client

// InitCache initializes the booking Redis client (using DB from AppConfig for session storage).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisBookingDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Booking): %v", err)
	}
}

// GetCacheClient returns the booking cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// CloseCache closes the booking cache client if it was opened.
func CloseCache() error {
	if CacheClient == nil {
		return nil
	}
	return CacheClient.Close()
}
