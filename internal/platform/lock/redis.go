package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client and verifies the connection.
func Connect(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// releaseScript deletes the lock key only if it still holds our value, so an
// expired lock reacquired by another caller is never released from here.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const acquirePollInterval = 25 * time.Millisecond

// Mutex serializes critical sections across processes using SET NX with a TTL.
type Mutex struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMutex(rdb *redis.Client, ttl time.Duration) *Mutex {
	return &Mutex{rdb: rdb, ttl: ttl}
}

// Acquire blocks until the key is locked or ctx is done. The returned release
// func is safe to call even after the TTL has let the lock lapse.
func (m *Mutex) Acquire(ctx context.Context, key string) (func(), error) {
	value := uuid.NewString()

	for {
		ok, err := m.rdb.SetNX(ctx, key, value, m.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %q: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %q: %w", key, ctx.Err())
		case <-time.After(acquirePollInterval):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		releaseScript.Run(releaseCtx, m.rdb, []string{key}, value)
	}
	return release, nil
}
