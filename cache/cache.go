// Package cache keeps decoded avatar service records until their TTL runs
// out.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/atomic"

	"github.com/elypia/auto-avatars/dns"
)

// DefaultSize is the number of domains a Cache holds unless [WithSize] is
// used.
const DefaultSize = 4096

// Cache maps domains to the response of their last successful lookup. It is
// safe for concurrent use.
//
// Expired entries are never removed. They are ignored by [Cache.Get] and
// replaced by the next [Cache.Put] for the same domain, or evicted when the
// cache is full.
type Cache struct {
	now     func() time.Time
	entries *lru.Cache[string, entry]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

type entry struct {
	insertedAt time.Time
	msg        *dns.Message
}

func (e entry) fresh(now time.Time) bool {
	ttl := time.Duration(e.msg.Record.TTL) * time.Second
	return e.insertedAt.Add(ttl).After(now)
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now  func() time.Time
	size int
}

// WithClock sets the function used to tell the current time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSize sets the maximum number of domains. The least recently used
// domain is dropped when the cache is full.
func WithSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.size = n
		}
	}
}

// New returns an empty Cache.
func New(opts ...Option) *Cache {
	o := options{now: time.Now, size: DefaultSize}
	for _, opt := range opts {
		opt(&o)
	}
	entries, err := lru.New[string, entry](o.size)
	if err != nil {
		panic(err)
	}
	return &Cache{now: o.now, entries: entries}
}

// Get returns the message stored for domain if its TTL hasn't expired.
func (c *Cache) Get(domain string) (*dns.Message, bool) {
	e, ok := c.entries.Get(domain)
	if !ok || !e.fresh(c.now()) {
		c.misses.Inc()
		return nil, false
	}
	c.hits.Inc()
	return e.msg, true
}

// Put stores msg for domain. Messages without an answer are not stored since
// they have no TTL.
func (c *Cache) Put(domain string, msg *dns.Message) {
	if msg == nil || msg.Data == nil || msg.Record == nil {
		return
	}
	c.entries.Add(domain, entry{insertedAt: c.now(), msg: msg})
}

// Len returns the number of stored domains, including expired ones.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns the number of hits and misses of [Cache.Get].
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
