// Package avatars finds the avatar service of an email domain, as described
// by https://wiki.libravatar.org/api/ (federation).
//
// A domain with its own service publishes a SRV record for
// _avatars-sec._tcp.<domain>. The record is looked up with DNS-over-HTTPS
// so that it works where only A and TXT lookups are available to the
// application.
//
//	r := &avatars.Resolver{Logger: slog.Default()}
//	msg, err := r.Discover(ctx, "libravatar.org", avatars.CloudflareDoH)
//	if err != nil {
//	        // try another host
//	}
//	if msg.Data != nil {
//	        log.Printf("Service: %s", avatars.ServiceURL(msg.Data))
//	}
//
// Successful lookups are cached until their TTL expires. Lookups that don't
// find a record are always sent to the DoH server.
package avatars
