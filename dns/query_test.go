package dns

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestQueryBytes(t *testing.T) {
	got, err := QueryBytes("libravatar.org")
	if err != nil {
		t.Fatalf("QueryBytes: %v", err)
	}
	want := append([]byte{0, 0, 1, 0, 0, 1, 0, 0, 0, 0, 0, 0}, libravatarResponse[12:50]...)
	if !bytes.Equal(got, want) {
		t.Errorf("QueryBytes() = %v, want %v", got, want)
	}
}

func TestEncodeQuery(t *testing.T) {
	for _, tc := range []struct {
		domain, want string
	}{
		{"libravatar.org", "AAABAAABAAAAAAAADF9hdmF0YXJzLXNlYwRfdGNwCmxpYnJhdmF0YXIDb3JnAAAhAAE"},
		{"libravatar.org.", "AAABAAABAAAAAAAADF9hdmF0YXJzLXNlYwRfdGNwCmxpYnJhdmF0YXIDb3JnAAAhAAE"},
	} {
		got, err := EncodeQuery(tc.domain)
		if err != nil {
			t.Errorf("EncodeQuery(%q): %v", tc.domain, err)
			continue
		}
		if got != tc.want {
			t.Errorf("EncodeQuery(%q) = %q, want %q", tc.domain, got, tc.want)
		}
		if strings.ContainsAny(got, "=+/") {
			t.Errorf("EncodeQuery(%q) = %q, want unpadded base64url", tc.domain, got)
		}
	}
}

func TestQueryBytesIDN(t *testing.T) {
	got, err := QueryBytes("bücher.example")
	if err != nil {
		t.Fatalf("QueryBytes: %v", err)
	}
	if want := []byte("\x0dxn--bcher-kva\x07example\x00\x00\x21\x00\x01"); !bytes.HasSuffix(got, want) {
		t.Errorf("QueryBytes() = %q, want suffix %q", got, want)
	}
}

func TestQueryBytesInvalid(t *testing.T) {
	for _, domain := range []string{
		"",
		".",
		"a..b",
		".example.org",
		strings.Repeat("a", 64) + ".org",
		"ü" + strings.Repeat("a", 70) + ".org",
		"ü..org",
	} {
		if _, err := QueryBytes(domain); !errors.Is(err, ErrInvalidDomain) {
			t.Errorf("QueryBytes(%q) err = %v, want %v", domain, err, ErrInvalidDomain)
		}
	}
}

func TestQueryRoundTrip(t *testing.T) {
	q, err := QueryBytes("example.org")
	if err != nil {
		t.Fatalf("QueryBytes: %v", err)
	}
	m, err := Decode(q)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := Question{Name: Service + ".example.org", Type: TypeSRV, Class: ClassINET}
	if m.Question != want {
		t.Errorf("Question = %#v, want %#v", m.Question, want)
	}
	if m.Header.Flags != 0x0100 || m.Header.QuestionCount != 1 {
		t.Errorf("Header = %#v", m.Header)
	}
	if m.Record != nil || m.Data != nil {
		t.Errorf("Record, Data = %v, %v, want nil", m.Record, m.Data)
	}
}
