package polyglot

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// freeAccountSuffix marks auth keys issued for free accounts. Free keys
// route to a distinct API subdomain.
const freeAccountSuffix = ":fx"

// IsFreeAccountAuthKey reports whether an auth key belongs to a free
// account.
func IsFreeAccountAuthKey(authKey string) bool {
	return strings.HasSuffix(strings.TrimSpace(authKey), freeAccountSuffix)
}

// Translator is the client for the Polyglot translation API. Its
// configuration (auth key, endpoint, retry bounds) is immutable after
// construction, so a single Translator is safe for concurrent use; each call
// carries its own transient retry state.
type Translator struct {
	transport *transport
	backoff   backoffConfig
	logger    zerolog.Logger

	// sleep and randFloat are injectable for tests.
	sleep     sleepFunc
	randFloat func() float64
}

// New builds a Translator for the given auth key. An empty key fails
// immediately, before any network call. A nil opts selects defaults.
func New(authKey string, opts *TranslatorOptions) (*Translator, error) {
	key := strings.TrimSpace(authKey)
	if key == "" {
		return nil, &AuthorizationError{Message: "auth key must be a non-empty string"}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var client *http.Client
	serverURL, proxyURL := "", ""
	if opts != nil {
		client = opts.HTTPClient
		serverURL = opts.ServerURL
		proxyURL = opts.ProxyURL
	}

	tr, err := newTransport(key, serverURL, proxyURL, client)
	if err != nil {
		return nil, err
	}

	return &Translator{
		transport: tr,
		backoff:   opts.backoffConfig(),
		logger:    opts.logger(),
		sleep:     defaultSleep,
		randFloat: rand.Float64,
	}, nil
}

// ServerURL returns the endpoint this Translator dispatches to.
func (t *Translator) ServerURL() string {
	return t.transport.serverURL
}

// Ping performs a minimal authenticated exchange, verifying connectivity and
// the auth key without consuming quota.
func (t *Translator) Ping(ctx context.Context) error {
	_, err := t.GetUsage(ctx)
	return err
}
