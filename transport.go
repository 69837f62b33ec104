package polyglot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	serverURLPaid = "https://api.polyglot.horse.fit/v2"
	serverURLFree = "https://api-free.polyglot.horse.fit/v2"

	authHeaderPrefix = "Polyglot-Auth-Key "
)

// bodyFunc produces a fresh request body and its content type. It is invoked
// once per attempt so retried requests never reuse a consumed reader. A nil
// bodyFunc means no body.
type bodyFunc func() (io.Reader, string, error)

// apiResponse is one completed HTTP exchange.
type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

// transport performs a single HTTP exchange per call. It carries no retry
// logic and never interprets status codes.
type transport struct {
	serverURL string
	authKey   string
	client    *http.Client
}

func newTransport(authKey, serverURL, proxyURL string, client *http.Client) (*transport, error) {
	base := strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if base == "" {
		if IsFreeAccountAuthKey(authKey) {
			base = serverURLFree
		} else {
			base = serverURLPaid
		}
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse server URL %q: %w", serverURL, err)
	}

	if client == nil {
		client = &http.Client{}
	}
	if proxy := strings.TrimSpace(proxyURL); proxy != "" {
		parsed, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy URL %q: %w", proxy, err)
		}
		inner := client.Transport
		if inner == nil {
			inner = http.DefaultTransport
		}
		roundTripper, ok := inner.(*http.Transport)
		if !ok {
			roundTripper = http.DefaultTransport.(*http.Transport)
		}
		proxied := roundTripper.Clone()
		proxied.Proxy = http.ProxyURL(parsed)
		clone := *client
		clone.Transport = proxied
		client = &clone
	}

	return &transport{
		serverURL: base,
		authKey:   strings.TrimSpace(authKey),
		client:    client,
	}, nil
}

// do performs exactly one network exchange. The caller owns retries and
// status-code interpretation.
func (t *transport) do(ctx context.Context, method, path string, query url.Values, body bodyFunc) (*apiResponse, error) {
	target := t.serverURL + path
	if len(query) > 0 {
		target = target + "?" + query.Encode()
	}

	var reader io.Reader
	contentType := ""
	if body != nil {
		var err error
		reader, contentType, err = body()
		if err != nil {
			return nil, fmt.Errorf("build request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", authHeaderPrefix+t.authKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &apiResponse{
		status: resp.StatusCode,
		header: resp.Header,
		body:   payload,
	}, nil
}

// timeoutError reports whether a transport failure was caused by a deadline
// or cancellation rather than an unreachable peer.
func timeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// connectionFailure wraps a transport-level error as a ConnectionError once
// all retries are exhausted.
func connectionFailure(err error) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{
		Message: fmt.Sprintf("request failed: %v", err),
		Timeout: timeoutError(err),
		Err:     err,
	}
}

// retryAfterHint extracts a server-supplied retry delay from a response.
func retryAfterHint(resp *apiResponse) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	raw := strings.TrimSpace(resp.header.Get("Retry-After"))
	if raw == "" {
		return 0, false
	}
	if secs, err := time.ParseDuration(raw + "s"); err == nil && secs >= 0 {
		return secs, true
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
