package local

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Config holds LocalCache settings.
type Config struct {
	GCInterval time.Duration
}

// entry holds a cached string value with an optional expiry.
type entry struct {
	data     string
	expireAt time.Time
	noExpiry bool
}

func (e *entry) expired() bool {
	return !e.noExpiry && time.Now().After(e.expireAt)
}

// LocalCache is an in-process cache implementing the Cache interface.
type LocalCache struct {
	kv         sync.Map // key → *entry
	zsets      sync.Map // key → *zset
	incrMu     sync.Mutex
	gcInterval time.Duration
	stopGC     chan struct{}
	closeOnce  sync.Once
}

// NewCache creates a LocalCache and starts the background GC goroutine.
func NewCache(cfg Config) (*LocalCache, error) {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := &LocalCache{
		gcInterval: interval,
		stopGC:     make(chan struct{}),
	}
	go c.runGC()
	return c, nil
}

// Close stops the background GC goroutine.
func (c *LocalCache) Close() {
	c.closeOnce.Do(func() { close(c.stopGC) })
}

func (c *LocalCache) runGC() {
	ticker := time.NewTicker(c.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.kv.Range(func(k, v interface{}) bool {
				if e, ok := v.(*entry); ok && e.expired() {
					c.kv.Delete(k)
				}
				return true
			})
		case <-c.stopGC:
			return
		}
	}
}

// ---- KV ----

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.kv.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	e := v.(*entry)
	if e.expired() {
		c.kv.Delete(key)
		return "", ErrNotFound
	}
	return e.data, nil
}

func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := &entry{data: value}
	if ttl > 0 {
		e.expireAt = time.Now().Add(ttl)
	} else {
		e.noExpiry = true
	}
	c.kv.Store(key, e)
	return nil
}

// Del removes KV entries and sorted sets alike, as Redis DEL does.
func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.kv.Delete(k)
		c.zsets.Delete(k)
	}
	return nil
}

// Incr keeps the entry's expiry, as Redis INCR does.
func (c *LocalCache) Incr(_ context.Context, key string) (int64, error) {
	c.incrMu.Lock()
	defer c.incrMu.Unlock()
	next := &entry{noExpiry: true}
	var n int64
	if v, ok := c.kv.Load(key); ok && !v.(*entry).expired() {
		old := v.(*entry)
		parsed, err := strconv.ParseInt(old.data, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache: %q is not an integer", key)
		}
		n = parsed
		next.expireAt, next.noExpiry = old.expireAt, old.noExpiry
	}
	n++
	next.data = strconv.FormatInt(n, 10)
	c.kv.Store(key, next)
	return n, nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	v, ok := c.kv.Load(key)
	if !ok {
		_, isZ := c.zsets.Load(key)
		return isZ, nil
	}
	if v.(*entry).expired() {
		c.kv.Delete(key)
		return false, nil
	}
	return true, nil
}

// ---- ZSet ----

type zset struct {
	mu     sync.Mutex
	scores map[string]float64
	order  []string // by score descending, ties by member descending
}

func (z *zset) resort() {
	sort.Slice(z.order, func(a, b int) bool {
		sa, sb := z.scores[z.order[a]], z.scores[z.order[b]]
		if sa != sb {
			return sa > sb
		}
		return z.order[a] > z.order[b]
	})
}

func (c *LocalCache) getOrCreateZSet(key string) *zset {
	v, _ := c.zsets.LoadOrStore(key, &zset{scores: make(map[string]float64)})
	return v.(*zset)
}

func (c *LocalCache) ZAdd(_ context.Context, key string, score float64, member string) error {
	z := c.getOrCreateZSet(key)
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, ok := z.scores[member]; !ok {
		z.order = append(z.order, member)
	}
	z.scores[member] = score
	z.resort()
	return nil
}

// ZReplace installs a fresh set under key. An empty scores map removes it.
func (c *LocalCache) ZReplace(_ context.Context, key string, scores map[string]float64) error {
	if len(scores) == 0 {
		c.zsets.Delete(key)
		return nil
	}
	z := &zset{scores: make(map[string]float64, len(scores)), order: make([]string, 0, len(scores))}
	for m, s := range scores {
		z.scores[m] = s
		z.order = append(z.order, m)
	}
	z.resort()
	c.zsets.Store(key, z)
	return nil
}

func (c *LocalCache) ZRem(_ context.Context, key string, members ...string) error {
	v, ok := c.zsets.Load(key)
	if !ok {
		return nil
	}
	z := v.(*zset)
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, m := range members {
		delete(z.scores, m)
	}
	kept := z.order[:0]
	for _, m := range z.order {
		if _, ok := z.scores[m]; ok {
			kept = append(kept, m)
		}
	}
	z.order = kept
	return nil
}

// ZRevRange returns members from highest to lowest score. Negative indexes
// count from the end, as in Redis.
func (c *LocalCache) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	v, ok := c.zsets.Load(key)
	if !ok {
		return nil, nil
	}
	z := v.(*zset)
	z.mu.Lock()
	defer z.mu.Unlock()
	n := int64(len(z.order))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil, nil
	}
	result := make([]string, stop-start+1)
	copy(result, z.order[start:stop+1])
	return result, nil
}

func (c *LocalCache) ZScore(_ context.Context, key, member string) (float64, error) {
	v, ok := c.zsets.Load(key)
	if !ok {
		return 0, ErrNotFound
	}
	z := v.(*zset)
	z.mu.Lock()
	defer z.mu.Unlock()
	s, ok := z.scores[member]
	if !ok {
		return 0, ErrNotFound
	}
	return s, nil
}
