package testutil

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/miekg/dns"
	"go.uber.org/atomic"
)

// DoHServer is a RFC 8484 server that answers GET requests from a fixed set
// of records.
type DoHServer struct {
	*httptest.Server
	// Compress enables name compression in responses.
	Compress bool

	requests atomic.Int64
}

// StartTestDoHServer starts a TLS DoH server on /dns-query. Use
// [DoHServer.Client] to talk to it and [DoHServer.Addr] as the DoH server
// name.
func StartTestDoHServer(t *testing.T, db []dns.RR) *DoHServer {
	s := &DoHServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/dns-query", func(w http.ResponseWriter, req *http.Request) {
		s.requests.Inc()
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if accept := req.Header.Get("accept"); accept != "application/dns-message" {
			t.Errorf("accept = %q", accept)
		}
		body, err := base64.RawURLEncoding.DecodeString(req.URL.Query().Get("dns"))
		if err != nil {
			t.Errorf("base64: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		qq := new(dns.Msg)
		if err := qq.Unpack(body); err != nil || len(qq.Question) != 1 {
			t.Errorf("dns.Msg.Unpack: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		resp := new(dns.Msg)
		resp.SetReply(qq)
		resp.RecursionAvailable = true
		resp.Compress = s.Compress
		q := qq.Question[0]
		for _, rr := range db {
			h := rr.Header()
			if strings.EqualFold(h.Name, q.Name) && h.Rrtype == q.Qtype {
				resp.Answer = append(resp.Answer, rr)
			}
		}
		if len(resp.Answer) == 0 {
			resp.Rcode = dns.RcodeNameError
		}
		t.Logf("QQ %v", q)
		t.Logf("AA %v", resp.Answer)
		out, err := resp.Pack()
		if err != nil {
			t.Errorf("dns.Msg.Pack: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/dns-message")
		w.Write(out)
	})
	s.Server = httptest.NewTLSServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Addr returns the host:port of the server.
func (s *DoHServer) Addr() string {
	return s.Listener.Addr().String()
}

// Requests returns the number of requests received so far.
func (s *DoHServer) Requests() int64 {
	return s.requests.Load()
}

// SRV returns the avatar service record of domain.
func SRV(domain string, ttl uint32, port uint16, target string) dns.RR {
	return &dns.SRV{
		Hdr: dns.RR_Header{
			Name:   dns.Fqdn("_avatars-sec._tcp." + domain),
			Rrtype: dns.TypeSRV,
			Class:  dns.ClassINET,
			Ttl:    ttl,
		},
		Port:   port,
		Target: dns.Fqdn(target),
	}
}
