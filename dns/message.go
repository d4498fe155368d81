package dns

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

var (
	ErrDecodeError = errors.New("decode error")
	// ErrMalformedRecord is returned when a name uses a form of compression
	// that can't be resolved, e.g. a pointer to an offset that wasn't seen
	// earlier in the same message.
	ErrMalformedRecord = errors.New("malformed DNS record")
)

const (
	TypeSRV   = 33 // RFC 2782
	ClassINET = 1

	headerLen = 12
)

// Header is the RFC 1035 message header. Flags are kept as a single value.
type Header struct {
	ID               uint16 `json:"id"`
	Flags            uint16 `json:"flags"`
	QuestionCount    uint16 `json:"questionCount"`
	AnswerCount      uint16 `json:"answerCount"`
	AuthoritiesCount uint16 `json:"authoritiesCount"`
	AdditionalsCount uint16 `json:"additionalsCount"`
}

// A question for a name server.
type Question struct {
	Name  string `json:"name"`
	Type  uint16 `json:"type"`
	Class uint16 `json:"class"`
}

// Record is the fixed part of a Resource Record.
type Record struct {
	Name       string `json:"name"`
	Type       uint16 `json:"type"`
	Class      uint16 `json:"class"`
	TTL        uint32 `json:"ttl"`
	DataLength uint16 `json:"dataLength"`
}

// SRV is the part of a SRV record needed to reach the service. Priority and
// weight are not decoded.
type SRV struct {
	Port   uint16 `json:"port"`
	Target string `json:"target"`
}

// Message is a decoded response to a SRV query. Only the first question and
// the first answer are decoded.
//
// Data is nil if and only if the response has no answers, in which case
// Record is nil too. A Message must not be modified after it is returned by
// [Decode] since it may be shared through a cache.
type Message struct {
	Header   Header   `json:"header"`
	Question Question `json:"question"`
	Record   *Record  `json:"record,omitempty"`
	Data     *SRV     `json:"data"`
}

// Uint returns the big-endian unsigned value of b.
func Uint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v*256 + uint64(c)
	}
	return v
}

// Decode decodes a response to a query created with [QueryBytes].
func Decode(m []byte) (*Message, error) {
	d := decoder{raw: m, memo: make(map[int]string)}
	return d.decode()
}

type decoder struct {
	raw []byte
	// Names seen so far, by the offset where they start.
	memo map[int]string
}

func (d decoder) decode() (*Message, error) {
	if len(d.raw) < headerLen {
		return nil, ErrDecodeError
	}
	msg := &Message{
		Header: Header{
			ID:               d.uint16(0),
			Flags:            d.uint16(2),
			QuestionCount:    d.uint16(4),
			AnswerCount:      d.uint16(6),
			AuthoritiesCount: d.uint16(8),
			AdditionalsCount: d.uint16(10),
		},
	}

	name, i, err := parseName(d.raw, headerLen, d.memo)
	if err != nil {
		return nil, err
	}
	if !d.has(i, 4) {
		return nil, ErrDecodeError
	}
	msg.Question = Question{
		Name:  name,
		Type:  d.uint16(i),
		Class: d.uint16(i + 2),
	}
	i += 4

	if msg.Header.AnswerCount == 0 {
		return msg, nil
	}

	if name, i, err = parseName(d.raw, i, d.memo); err != nil {
		return nil, err
	}
	if !d.has(i, 10) {
		return nil, ErrDecodeError
	}
	rr := &Record{
		Name:       name,
		Type:       d.uint16(i),
		Class:      d.uint16(i + 2),
		TTL:        uint32(Uint(d.raw[i+4 : i+8])),
		DataLength: d.uint16(i + 8),
	}
	i += 10

	// priority(2) weight(2) port(2) target
	if !d.has(i, 6) {
		return nil, ErrDecodeError
	}
	srv := &SRV{Port: d.uint16(i + 4)}
	if srv.Target, _, err = parseName(d.raw, i+6, d.memo); err != nil {
		return nil, err
	}
	msg.Record = rr
	msg.Data = srv
	return msg, nil
}

func (d decoder) has(off, n int) bool {
	return off >= 0 && off+n <= len(d.raw)
}

func (d decoder) uint16(off int) uint16 {
	return uint16(Uint(d.raw[off : off+2]))
}

// parseName decodes the name at offset off of b. It returns the name and the
// offset right after it.
//
// A name is either a sequence of labels, which is added to memo, or a single
// compression pointer to a name already in memo. Pointers at the end of a
// label sequence, and pointers to pointers, are not supported.
func parseName(b []byte, off int, memo map[int]string) (string, int, error) {
	if off < 0 || off >= len(b) {
		return "", 0, ErrDecodeError
	}
	if b[off]&0xc0 == 0xc0 { // pointer
		if off+2 > len(b) {
			return "", 0, ErrDecodeError
		}
		ptr := int(Uint([]byte{b[off] & 0x3f, b[off+1]}))
		name, ok := memo[ptr]
		if !ok {
			return "", 0, fmt.Errorf("%w: pointer to offset %d", ErrMalformedRecord, ptr)
		}
		return name, off + 2, nil
	}

	s := cryptobyte.String(b[off:])
	var labels []string
	for {
		if !s.Empty() && s[0]&0xc0 != 0 {
			return "", 0, fmt.Errorf("%w: unsupported label type 0x%02x at offset %d", ErrMalformedRecord, s[0], len(b)-len(s))
		}
		var label cryptobyte.String
		if !s.ReadUint8LengthPrefixed(&label) {
			return "", 0, ErrDecodeError
		}
		if len(label) == 0 {
			break
		}
		labels = append(labels, string(label))
	}
	name := strings.Join(labels, ".")
	memo[off] = name
	return name, len(b) - len(s), nil
}
