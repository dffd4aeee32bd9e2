package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const runLockPrefix = "ats:sync:lock:"

// RunLock is an advisory lock keyed by run name. With Redis available it
// spans processes; otherwise it only excludes runs inside this process.
type RunLock struct {
	redis *Redis
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	local map[string]localLock
}

type localLock struct {
	token     string
	expiresAt time.Time
}

func NewRunLock(r *Redis, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RunLock{redis: r, ttl: ttl, now: time.Now, local: make(map[string]localLock)}
}

// Acquire returns ok=false when another holder owns the lock. The returned
// release func is safe to call more than once.
func (l *RunLock) Acquire(ctx context.Context, name string) (release func(), ok bool, err error) {
	key := runLockPrefix + name
	token := uuid.NewString()

	if l.redis.Available() {
		ok, err := l.redis.SetIfNotExists(ctx, key, token, l.ttl)
		if err == nil {
			if !ok {
				return func() {}, false, nil
			}
			var once sync.Once
			return func() {
				once.Do(func() {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_, _ = l.redis.DeleteIfValue(ctx, key, token)
				})
			}, true, nil
		}
		// Redis failed mid-flight: fall through to the local lock.
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, held := l.local[key]; held && now.Before(cur.expiresAt) {
		return func() {}, false, nil
	}
	l.local[key] = localLock{token: token, expiresAt: now.Add(l.ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if cur, held := l.local[key]; held && cur.token == token {
				delete(l.local, key)
			}
		})
	}, true, nil
}
