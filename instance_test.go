package avatars

import (
	"context"
	"errors"
	"testing"

	"github.com/elypia/auto-avatars/dns"
	"github.com/elypia/auto-avatars/testutil"
)

func TestServiceURL(t *testing.T) {
	for _, tc := range []struct {
		srv  dns.SRV
		want string
	}{
		{dns.SRV{Port: 443, Target: "seccdn.libravatar.org"}, "https://seccdn.libravatar.org"},
		{dns.SRV{Port: 8443, Target: "avatars.example.org"}, "https://avatars.example.org:8443"},
		{dns.SRV{Port: 443, Target: "avatars.example.org."}, "https://avatars.example.org"},
	} {
		if got := ServiceURL(&tc.srv); got != tc.want {
			t.Errorf("ServiceURL(%v) = %q, want %q", tc.srv, got, tc.want)
		}
	}
}

func TestDomainOf(t *testing.T) {
	for _, tc := range []struct {
		email, want string
		err         error
	}{
		{"alice@libravatar.org", "libravatar.org", nil},
		{"  Bob@Example.ORG ", "example.org", nil},
		{`"a@b"@example.org`, "example.org", nil},
		{"nobody", "", ErrInvalidEmail},
		{"nobody@", "", ErrInvalidEmail},
	} {
		got, err := DomainOf(tc.email)
		if got != tc.want || !errors.Is(err, tc.err) {
			t.Errorf("DomainOf(%q) = %q, %v, want %q, %v", tc.email, got, err, tc.want, tc.err)
		}
	}
}

func TestNormalizeInstance(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"https://www.libravatar.org/", "https://www.libravatar.org"},
		{"https://www.libravatar.org", "https://www.libravatar.org"},
		{"https://example.org/avatars/", "https://example.org/avatars/"},
	} {
		if got := NormalizeInstance(tc.in); got != tc.want {
			t.Errorf("NormalizeInstance(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInstanceURL(t *testing.T) {
	r, srv, _ := newTestResolver(t, testutil.SRV("example.org", 300, 8443, "avatars.example.org"))
	ctx := context.Background()

	for _, tc := range []struct {
		email, dohServer, want string
	}{
		{"alice@example.org", srv.Addr(), "https://avatars.example.org:8443"},
		{"bob@example.com", srv.Addr(), DefaultHost},
		{"alice@example.org", "", DefaultHost},
		{"alice@example.org", "127.0.0.1:1", DefaultHost},
	} {
		got, err := (&Resolver{Client: r.Client}).InstanceURL(ctx, tc.email, tc.dohServer, DefaultHost+"/")
		if err != nil {
			t.Errorf("InstanceURL(%q, %q): %v", tc.email, tc.dohServer, err)
			continue
		}
		if got != tc.want {
			t.Errorf("InstanceURL(%q, %q) = %q, want %q", tc.email, tc.dohServer, got, tc.want)
		}
	}

	if _, err := r.InstanceURL(ctx, "nobody", srv.Addr(), DefaultHost); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("InstanceURL(nobody) err = %v, want %v", err, ErrInvalidEmail)
	}
}
