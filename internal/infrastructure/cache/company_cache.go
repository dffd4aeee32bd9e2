package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

const companyKeyPrefix = "ats:company:"

// DefaultCompanyTTL bounds how long a resolved company id is trusted.
const DefaultCompanyTTL = 24 * time.Hour

// CompanyCache maps company names to External ATS company ids. Redis is the
// shared store; the in-process map keeps resolution cheap when Redis is down
// and absorbs Redis errors.
type CompanyCache struct {
	redis *Redis
	ttl   time.Duration

	mu    sync.RWMutex
	local map[string]int64
}

func NewCompanyCache(r *Redis, ttl time.Duration) *CompanyCache {
	if ttl <= 0 {
		ttl = DefaultCompanyTTL
	}
	return &CompanyCache{redis: r, ttl: ttl, local: make(map[string]int64)}
}

// companyKey keeps the name's case: the ATS matches company names exactly.
func companyKey(name string) string {
	return companyKeyPrefix + strings.TrimSpace(name)
}

func (c *CompanyCache) GetCompanyID(ctx context.Context, name string) (int64, bool) {
	key := companyKey(name)

	c.mu.RLock()
	id, ok := c.local[key]
	c.mu.RUnlock()
	if ok {
		return id, true
	}

	raw, found, err := c.redis.Get(ctx, key)
	if err != nil || !found {
		return 0, false
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	c.mu.Lock()
	c.local[key] = id
	c.mu.Unlock()
	return id, true
}

func (c *CompanyCache) SetCompanyID(ctx context.Context, name string, id int64) {
	if id <= 0 {
		return
	}
	key := companyKey(name)

	c.mu.Lock()
	c.local[key] = id
	c.mu.Unlock()

	_ = c.redis.Set(ctx, key, strconv.FormatInt(id, 10), c.ttl)
}
