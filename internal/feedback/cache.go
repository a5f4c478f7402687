package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/clock"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"

	"github.com/redis/go-redis/v9"
)

// ProbeCache holds probe results keyed by complaint sequence.
type ProbeCache interface {
	Get(ctx context.Context, seq int) (Lookup, bool)
	Put(ctx context.Context, lookup Lookup)
	Delete(ctx context.Context, seq int)
}

// MemoryCache is a process-local ProbeCache. Entries expire after ttl; a
// zero ttl keeps them until deleted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int]memoryEntry
	ttl     time.Duration
	clock   clock.Clock
}

type memoryEntry struct {
	lookup  Lookup
	expires time.Time
}

// NewMemoryCache creates an empty MemoryCache whose entries never expire.
func NewMemoryCache() *MemoryCache {
	return NewExpiringMemoryCache(0, nil)
}

// NewExpiringMemoryCache creates an empty MemoryCache whose entries expire
// after ttl. A nil clk means the system clock.
func NewExpiringMemoryCache(ttl time.Duration, clk clock.Clock) *MemoryCache {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryCache{entries: make(map[int]memoryEntry), ttl: ttl, clock: clk}
}

func (c *MemoryCache) Get(_ context.Context, seq int) (Lookup, bool) {
	c.mu.RLock()
	e, ok := c.entries[seq]
	c.mu.RUnlock()
	if !ok {
		return Lookup{}, false
	}
	if c.ttl > 0 && !c.clock.Now().Before(e.expires) {
		c.mu.Lock()
		if cur, still := c.entries[seq]; still && cur.expires.Equal(e.expires) {
			delete(c.entries, seq)
		}
		c.mu.Unlock()
		return Lookup{}, false
	}
	return copyLookup(e.lookup), true
}

func (c *MemoryCache) Put(_ context.Context, lookup Lookup) {
	e := memoryEntry{lookup: copyLookup(lookup)}
	if c.ttl > 0 {
		e.expires = c.clock.Now().Add(c.ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[lookup.ComplaintID] = e
}

func (c *MemoryCache) Delete(_ context.Context, seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, seq)
}

func copyLookup(l Lookup) Lookup {
	if l.Feedback != nil {
		fb := *l.Feedback
		l.Feedback = &fb
	}
	return l
}

// RedisKeyPrefix prefixes every probe cache key.
const RedisKeyPrefix = "ims:feedback:probe:"

// RedisCache shares probe results between console processes. Redis errors
// are logged and treated as a cache miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("  ✓ Connected to Redis at %s\n", opts.Addr)
	return client, nil
}

// NewRedisCache creates a RedisCache whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// cachedLookup is the JSON form of a Lookup in Redis.
type cachedLookup struct {
	ComplaintID int                 `json:"complaintId"`
	Feedback    *complaint.Feedback `json:"feedback,omitempty"`
}

func redisKey(seq int) string {
	return RedisKeyPrefix + strconv.Itoa(seq)
}

func (c *RedisCache) Get(ctx context.Context, seq int) (Lookup, bool) {
	data, err := c.client.Get(ctx, redisKey(seq)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️  Probe cache read for complaint %d failed: %v", seq, err)
		}
		return Lookup{}, false
	}

	var cached cachedLookup
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Printf("⚠️  Probe cache entry for complaint %d is corrupt: %v", seq, err)
		return Lookup{}, false
	}
	return Lookup{ComplaintID: cached.ComplaintID, Feedback: cached.Feedback}, true
}

func (c *RedisCache) Put(ctx context.Context, lookup Lookup) {
	data, err := json.Marshal(cachedLookup{ComplaintID: lookup.ComplaintID, Feedback: lookup.Feedback})
	if err != nil {
		log.Printf("⚠️  Failed to encode probe for complaint %d: %v", lookup.ComplaintID, err)
		return
	}
	if err := c.client.Set(ctx, redisKey(lookup.ComplaintID), data, c.ttl).Err(); err != nil {
		log.Printf("⚠️  Probe cache write for complaint %d failed: %v", lookup.ComplaintID, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, seq int) {
	if err := c.client.Del(ctx, redisKey(seq)).Err(); err != nil {
		log.Printf("⚠️  Probe cache delete for complaint %d failed: %v", seq, err)
	}
}
