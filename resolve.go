package avatars

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/elypia/auto-avatars/cache"
	"github.com/elypia/auto-avatars/dns"
)

// DefaultTimeout bounds a single DoH request.
const DefaultTimeout = 3 * time.Second

// Well-known RFC 8484 servers.
const (
	CloudflareDoH = "cloudflare-dns.com"
	GoogleDoH     = "dns.google"
	QuadNineDoH   = "dns.quad9.net"
)

// Resolver finds the avatar service of a domain with DNS-over-HTTPS. The zero
// value is ready to use. A Resolver must not be copied after first use.
type Resolver struct {
	// Cache holds successful lookups. If nil, a new [cache.Cache] is created
	// on first use.
	Cache *cache.Cache
	// Client sends the DoH requests. If nil, [dns.NewClient] is used.
	Client *retryablehttp.Client
	// Timeout is the maximum amount of time to wait for a DoH response.
	// The default value is 3s.
	Timeout time.Duration
	// Logger receives debug and warning messages. If nil, nothing is
	// logged.
	Logger *slog.Logger

	once sync.Once
}

// NewResolver returns a Resolver with the given cache and logger.
func NewResolver(c *cache.Cache, logger *slog.Logger) *Resolver {
	return &Resolver{Cache: c, Logger: logger}
}

func (r *Resolver) init() {
	r.once.Do(func() {
		if r.Cache == nil {
			r.Cache = cache.New()
		}
		if r.Logger == nil {
			r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		if r.Client == nil {
			r.Client = dns.NewClient()
			r.Client.Logger = r.Logger
		}
		if r.Timeout <= 0 {
			r.Timeout = DefaultTimeout
		}
	})
}

// Discover returns the avatar service record of domain, asking dohServer
// (host or host:port) when it isn't cached.
//
// A response without a record has a nil Data field and isn't an error. Such
// responses are not cached. Errors from the transport and the decoder are
// returned unmodified, and nothing is retried.
func (r *Resolver) Discover(ctx context.Context, domain, dohServer string) (*dns.Message, error) {
	r.init()
	if msg, ok := r.Cache.Get(domain); ok {
		r.Logger.Debug("avatar service cache hit", "domain", domain)
		return msg, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	msg, err := dns.Query(ctx, r.Client, dohServer, domain)
	if err != nil {
		return nil, err
	}
	if msg.Data == nil {
		r.Logger.Debug("no avatar service", "domain", domain, "server", dohServer, "flags", msg.Header.Flags)
		return msg, nil
	}
	r.Logger.Debug("avatar service found", "domain", domain, "server", dohServer,
		"target", msg.Data.Target, "port", msg.Data.Port, "ttl", msg.Record.TTL)
	r.Cache.Put(domain, msg)
	return msg, nil
}
