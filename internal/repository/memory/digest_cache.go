package memory

import (
	"time"

	"ai-knowledge-router-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// DigestCache keeps recent intent digests in process memory
type DigestCache struct {
	cache *cache.Cache
}

func NewDigestCache(ttl time.Duration) *DigestCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	// Purge expired items twice per TTL
	c := cache.New(ttl, ttl/2)
	return &DigestCache{
		cache: c,
	}
}

func (r *DigestCache) Save(key string, digest store.IntentDigest) {
	r.cache.Set(key, digest, cache.DefaultExpiration)
}

func (r *DigestCache) Get(key string) (store.IntentDigest, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(store.IntentDigest), true
	}
	return store.IntentDigest{}, false
}

func (r *DigestCache) Delete(key string) {
	r.cache.Delete(key)
}

func (r *DigestCache) Len() int {
	return r.cache.ItemCount()
}
