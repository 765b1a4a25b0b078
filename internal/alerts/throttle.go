package alerts

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Throttle evita notificar dos veces la misma dosis aunque el registro
// todavía no tenga alert_sent persistido (p.ej. dos instancias barriendo).
type Throttle interface {
	// Acquire devuelve true si esta llamada ganó el derecho a notificar.
	Acquire(ctx context.Context, key string) (bool, error)
}

// RedisThrottle usa SETNX con TTL como candado de envío único.
type RedisThrottle struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisThrottle(client *redis.Client, ttl time.Duration) *RedisThrottle {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisThrottle{
		client: client,
		prefix: "pillminder:alert:",
		ttl:    ttl,
	}
}

func (t *RedisThrottle) Acquire(ctx context.Context, key string) (bool, error) {
	return t.client.SetNX(ctx, t.prefix+key, 1, t.ttl).Result()
}

// NoopThrottle deja pasar todo; se usa cuando no hay redis configurado
// (una sola instancia, el alert_sent persistido alcanza).
type NoopThrottle struct{}

func (NoopThrottle) Acquire(ctx context.Context, key string) (bool, error) {
	return true, nil
}
