// Package fetcher retrieves asset binaries from the DAM server.
package fetcher

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"
)

const connectTimeout = 5 * time.Second

// Client downloads asset binaries over HTTP. Only the connect phase is
// bounded; a server that accepts the connection and then stalls is not
// separately protected against.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a fetch client with the bounded connect timeout.
func NewClient() *Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: connectTimeout,
			},
		},
	}
}

// Fetch downloads the asset at url and returns its raw bytes. Connect and
// transfer failures come back as *TransportError so the caller can
// distinguish a dead remote server from per-asset problems. The response
// status is deliberately not inspected: whatever the server transfers is the
// asset payload.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	return data, nil
}
