package dns

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/net/idna"
)

var ErrInvalidDomain = errors.New("invalid domain")

// Service is the SRV owner name prefix that advertises an avatar service.
const Service = "_avatars-sec._tcp"

const maxLabelLen = 63

// serviceLabels is Service in wire format, without the terminating zero.
var serviceLabels = []byte("\x0c_avatars-sec\x04_tcp")

// Non-ASCII domains are sent as A-labels.
var idnaProfile = idna.New(idna.MapForLookup(), idna.VerifyDNSLength(true), idna.BidiRule())

// QueryBytes returns a serialized recursive query for the SRV record of
// Service under domain.
func QueryBytes(domain string) ([]byte, error) {
	labels, err := queryLabels(domain)
	if err != nil {
		return nil, err
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddUint16(0)      // ID
	b.AddUint16(0x0100) // RD
	b.AddUint16(1)      // QDCOUNT
	b.AddUint16(0)
	b.AddUint16(0)
	b.AddUint16(0)
	b.AddBytes(serviceLabels)
	for _, l := range labels {
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes([]byte(l))
		})
	}
	b.AddUint8(0)
	b.AddUint16(TypeSRV)
	b.AddUint16(ClassINET)
	return b.Bytes()
}

// EncodeQuery returns the query for domain as unpadded base64url, the form
// used in the dns parameter of a RFC 8484 GET request.
func EncodeQuery(domain string) (string, error) {
	q, err := QueryBytes(domain)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(q), nil
}

func queryLabels(domain string) ([]string, error) {
	name := strings.TrimSuffix(domain, ".")
	if !isASCII(name) {
		v, err := idnaProfile.ToASCII(name)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidDomain, domain, err)
		}
		name = v
	}
	if name == "" {
		return nil, fmt.Errorf("%w %q", ErrInvalidDomain, domain)
	}
	labels := strings.Split(name, ".")
	for _, l := range labels {
		if len(l) == 0 || len(l) > maxLabelLen {
			return nil, fmt.Errorf("%w %q: bad label length %d", ErrInvalidDomain, domain, len(l))
		}
	}
	return labels, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
