// Package query caches backend reads by key. Keys are slash separated
// ("events/Study", "event/<id>") so a mutation can invalidate a whole family
// of reads by prefix.
package query

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of entries kept when New is given a non-positive size.
const DefaultSize = 256

// Key families invalidated after membership changes.
const (
	EventsPrefix       = "events"
	EventPrefix        = "event"
	ParticipantsPrefix = "eventParticipants"
)

// EventsKey is the key of an event list read; parts are the non-empty filters.
func EventsKey(parts ...string) string {
	return join(EventsPrefix, parts...)
}

// EventKey is the key of a single event read.
func EventKey(eventID string) string {
	return join(EventPrefix, eventID)
}

// ParticipantsKey is the key of an event roster read.
func ParticipantsKey(eventID string) string {
	return join(ParticipantsPrefix, eventID)
}

func join(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

// Cache is an LRU of fetched values. A fetch only stores its result when no
// later fetch of the same key was issued and no invalidation hit the key in
// between, so the last-issued refresh wins.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, any]
	issued  map[string]uint64
	seq     uint64
}

// New creates a cache holding at most size entries.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		entries: entries,
		issued:  make(map[string]uint64),
	}, nil
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (any, bool) {
	return c.entries.Get(key)
}

// Set stores value under key and supersedes in-flight fetches of it.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.issued, key)
	c.entries.Add(key, value)
}

// Invalidate drops every entry whose key equals one of prefixes or lies
// below it ("events" matches "events/Study" but not "eventsX"). In-flight
// fetches of matching keys will not store their results.
func (c *Cache) Invalidate(prefixes ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.entries.Keys() {
		if matches(key, prefixes) {
			c.entries.Remove(key)
			removed++
		}
	}
	for key := range c.issued {
		if matches(key, prefixes) {
			delete(c.issued, key)
		}
	}
	return removed
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.issued = make(map[string]uint64)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) issue(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.issued[key] = c.seq
	return c.seq
}

func (c *Cache) complete(key string, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issued[key] != gen {
		return
	}
	delete(c.issued, key)
	c.entries.Add(key, value)
}

func matches(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if key == p || strings.HasPrefix(key, p+"/") {
			return true
		}
	}
	return false
}

// Fetch returns the cached value for key, or calls fn and caches its result.
// Errors are never cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	return Refresh(ctx, c, key, fn)
}

// Refresh calls fn regardless of the cached value and stores the result
// unless a later refresh or an invalidation superseded it.
func Refresh[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	gen := c.issue(key)
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.complete(key, gen, v)
	return v, nil
}
