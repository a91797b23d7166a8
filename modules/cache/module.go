package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Prefix   string
	TTL      time.Duration
	PoolSize int
}

// Module owns the Redis client behind the load cache.
type Module struct {
	config Config
	client *redis.Client
	cache  *LoadCache
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new cache module.
func NewModule(config Config) *Module {
	return &Module{config: config}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Connect creates the Redis client and verifies it answers. It is safe to
// call more than once.
func (m *Module) Connect(ctx context.Context) error {
	if m.cache != nil {
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.config.Addr,
		PoolSize:     m.config.PoolSize,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		m.client.Close()
		m.client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.cache = New(m.client, m.config.Prefix, m.config.TTL)
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.config.Addr, m.config.Prefix, m.config.TTL)
	return nil
}

// Start connects to Redis and drops counts left by a previous run.
func (m *Module) Start(ctx context.Context) error {
	if err := m.Connect(ctx); err != nil {
		return err
	}
	if err := m.cache.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush stale load counts: %w", err)
	}
	log.Println("[cache] Module started")
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[cache] Error closing Redis connection: %v", err)
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// Cache returns the load cache. It is nil until Connect succeeds.
func (m *Module) Cache() *LoadCache {
	return m.cache
}

// Health pings Redis and reports statistics.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.cache == nil {
		return mono.HealthStatus{Healthy: false, Message: "cache not initialized"}
	}
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"addr": m.config.Addr, "stats": m.cache.GetStats()},
	}
}
