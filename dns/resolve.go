package dns

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

// MediaType is the content type of DNS messages in RFC 8484.
const MediaType = "application/dns-message"

const maxMessageSize = 65535

var ErrHTTPStatus = errors.New("unexpected status code")

// NewClient returns a client that makes a single attempt per request and
// hands non-2xx responses back to the caller.
func NewClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	client.CheckRetry = noRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

func noRetry(context.Context, *http.Response, error) (bool, error) {
	return false, nil
}

// Query sends a RFC 8484 DoH (DNS-over-HTTPS) GET request for the SRV record
// of Service under domain to https://dohServer/dns-query.
//
// Transport errors are returned as they are. It's up to the caller to try
// another host.
func Query(ctx context.Context, client *retryablehttp.Client, dohServer, domain string) (*Message, error) {
	q, err := EncodeQuery(domain)
	if err != nil {
		return nil, err
	}
	u := url.URL{Scheme: "https", Host: dohServer, Path: "/dns-query", RawQuery: "dns=" + q}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", MediaType)
	req.Header.Set("user-agent", "")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d", ErrHTTPStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageSize))
	if err != nil {
		return nil, err
	}
	return Decode(body)
}
