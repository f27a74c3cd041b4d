package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProviderProbe reports whether the external scheduling provider is reachable.
type ProviderProbe interface {
	CheckHealth(ctx context.Context) bool
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	Scheduler bool      `json:"scheduler"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
// The scheduling provider probe is liveness only; the booking flow never consults it.
func StartHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client, probe ProviderProbe) {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

			redisHealthy := redisClient.Ping(ctx).Err() == nil
			mongoHealthy := mongoClient.Ping(ctx, nil) == nil
			schedulerHealthy := probe.CheckHealth(ctx)

			cancel()

			mu.Lock()
			currentHealth = HealthStatus{
				Mongo:     mongoHealthy,
				Redis:     redisHealthy,
				Scheduler: schedulerHealthy,
				CheckedAt: time.Now(),
			}
			mu.Unlock()
		}
	}()
}
