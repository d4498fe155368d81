// Package dns implements the DNS wire format needed to look up the avatar
// service of a domain with RFC 8484 "DNS Queries over HTTPS" (DoH).
//
// Only one query shape is supported: a single SRV question for
// _avatars-sec._tcp.<domain>. Responses are decoded up to the first answer.
// Name compression is limited to pointers that replace a whole name seen
// earlier in the same message.
//
// Example:
//
//	msg, err := dns.Query(context.Background(), dns.NewClient(), "1.1.1.1", "libravatar.org")
//	if err != nil {
//		fmt.Fprintf(os.Stderr, "dns.Query: %v", err)
//		os.Exit(1)
//	}
//	if msg.Data != nil {
//		fmt.Printf("%s:%d\n", msg.Data.Target, msg.Data.Port)
//	}
package dns
