package cache

import (
	"encoding/json"
	"sync"
	"time"

	"cardbase.GO/config"
)

// Cache is a simple thread-safe key-value store using sync.Map. It fronts
// the catalog display-metadata joins; ledger counters are never cached.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to a set of keys
	tagIndex sync.Map // map[string]map[string]struct{}
}

var (
	once     sync.Once
	instance *Cache
)

func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix timestamp in nanoseconds; 0 means no expiration
}

// Set stores a value for a key with an optional TTL (in seconds) and optional tags. If ttl is 0, the value does not expire.
func (c *Cache) Set(key string, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	for _, tag := range tags {
		set, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		set.(*sync.Map).Store(key, struct{}{})
	}
}

// Get retrieves a value for a key. Returns (value, true) if found and not expired, (nil, false) otherwise.
func (c *Cache) Get(key string) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item := v.(cacheItem)
	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key string) {
	c.m.Delete(key)
}

// InvalidateTag removes every key associated with a tag.
func (c *Cache) InvalidateTag(tag string) {
	set, ok := c.tagIndex.Load(tag)
	if !ok {
		return
	}
	set.(*sync.Map).Range(func(key, _ interface{}) bool {
		c.m.Delete(key.(string))
		return true
	})
	c.tagIndex.Delete(tag)
}

// GetJSON reads a cached JSON value into out, preferring Redis when
// configured, falling back to the in-memory store.
func GetJSON(key string, out interface{}) bool {
	if config.RedisClient != nil {
		raw, err := config.RedisClient.Get(config.RedisCtx(), key).Bytes()
		if err == nil && json.Unmarshal(raw, out) == nil {
			return true
		}
		return false
	}
	v, ok := GetInstance().Get(key)
	if !ok {
		return false
	}
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// SetJSON stores a JSON-encoded value with a TTL in seconds.
func SetJSON(key string, value interface{}, ttl int64, tags []string) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if config.RedisClient != nil {
		config.RedisClient.Set(config.RedisCtx(), key, raw, time.Duration(ttl)*time.Second)
		return
	}
	GetInstance().Set(key, raw, ttl, tags)
}
