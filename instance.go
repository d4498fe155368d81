package avatars

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/elypia/auto-avatars/dns"
)

// DefaultHost is the avatar service used when a domain doesn't have its own.
const DefaultHost = "https://www.libravatar.org"

var ErrInvalidEmail = errors.New("invalid email address")

// ServiceURL returns the base URL of the service described by srv. The port
// is omitted when it is 443.
func ServiceURL(srv *dns.SRV) string {
	host := strings.TrimSuffix(srv.Target, ".")
	if srv.Port != 443 {
		host = net.JoinHostPort(host, strconv.Itoa(int(srv.Port)))
	}
	return "https://" + host
}

// DomainOf returns the lowercase domain part of email.
func DomainOf(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	i := strings.LastIndexByte(email, '@')
	if i < 0 || i == len(email)-1 {
		return "", fmt.Errorf("%w %q", ErrInvalidEmail, email)
	}
	return email[i+1:], nil
}

// NormalizeInstance removes the trailing slash of an instance URL that has no
// path.
func NormalizeInstance(instance string) string {
	if !strings.HasSuffix(instance, "/") {
		return instance
	}
	u, err := url.Parse(instance)
	if err != nil || u.Path != "/" {
		return instance
	}
	return strings.TrimSuffix(instance, "/")
}

// InstanceURL returns the base URL of the avatar service for email. The
// domain's own service is used when dohServer is set and the domain
// advertises one. Otherwise, or when the lookup fails, fallback is returned.
func (r *Resolver) InstanceURL(ctx context.Context, email, dohServer, fallback string) (string, error) {
	r.init()
	fallback = NormalizeInstance(fallback)
	domain, err := DomainOf(email)
	if err != nil {
		return "", err
	}
	if dohServer == "" {
		return fallback, nil
	}
	msg, err := r.Discover(ctx, domain, dohServer)
	if err != nil {
		r.Logger.Warn("avatar service lookup failed", "domain", domain, "server", dohServer, "err", err)
		return fallback, nil
	}
	if msg.Data == nil {
		return fallback, nil
	}
	return ServiceURL(msg.Data), nil
}
