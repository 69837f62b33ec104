package polyglot

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const (
	defaultMaxRetries = 5
	defaultMinTimeout = 1 * time.Second
	defaultMaxTimeout = 120 * time.Second
)

// TranslatorOptions configures a Translator. The zero value selects the
// production endpoint for the key's account type with default retry bounds.
// Options are copied at construction; a Translator never observes later
// mutation.
type TranslatorOptions struct {
	// ServerURL overrides the endpoint, for example to point at a mock
	// service in tests. Empty selects the default for the account type.
	ServerURL string

	// MaxRetries is the retry attempt ceiling per logical request, not
	// counting the initial attempt. Negative values are treated as zero.
	// When nil, the default of 5 applies.
	MaxRetries *int

	// MinTimeout and MaxTimeout bound the exponential backoff delay.
	MinTimeout time.Duration
	MaxTimeout time.Duration

	// ProxyURL routes all requests through an HTTP proxy when set.
	ProxyURL string

	// HTTPClient replaces the underlying *http.Client. The Translator
	// shares it read-only across concurrent calls.
	HTTPClient *http.Client

	// Logger receives debug-level events for dispatch, retries, and
	// document polling. Nil disables logging.
	Logger *zerolog.Logger
}

func (o *TranslatorOptions) validate() error {
	if o == nil {
		return nil
	}
	if o.MinTimeout < 0 {
		return fmt.Errorf("MinTimeout must be >= 0")
	}
	if o.MaxTimeout < 0 {
		return fmt.Errorf("MaxTimeout must be >= 0")
	}
	if o.MinTimeout > 0 && o.MaxTimeout > 0 && o.MinTimeout > o.MaxTimeout {
		return fmt.Errorf("MinTimeout (%s) cannot exceed MaxTimeout (%s)", o.MinTimeout, o.MaxTimeout)
	}
	return nil
}

func (o *TranslatorOptions) backoffConfig() backoffConfig {
	cfg := backoffConfig{
		maxRetries: defaultMaxRetries,
		minTimeout: defaultMinTimeout,
		maxTimeout: defaultMaxTimeout,
	}
	if o == nil {
		return cfg
	}
	if o.MaxRetries != nil {
		cfg.maxRetries = *o.MaxRetries
		if cfg.maxRetries < 0 {
			cfg.maxRetries = 0
		}
	}
	if o.MinTimeout > 0 {
		cfg.minTimeout = o.MinTimeout
	}
	if o.MaxTimeout > 0 {
		cfg.maxTimeout = o.MaxTimeout
	}
	return cfg
}

func (o *TranslatorOptions) logger() zerolog.Logger {
	if o == nil || o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// envOptions is the environment-variable surface recognized by
// LoadOptionsFromEnv.
type envOptions struct {
	AuthKey    string        `envconfig:"POLYGLOT_AUTH_KEY"`
	ServerURL  string        `envconfig:"POLYGLOT_SERVER_URL"`
	MaxRetries int           `envconfig:"POLYGLOT_MAX_RETRIES" default:"5"`
	MinTimeout time.Duration `envconfig:"POLYGLOT_MIN_TIMEOUT" default:"1s"`
	MaxTimeout time.Duration `envconfig:"POLYGLOT_MAX_TIMEOUT" default:"2m"`
	ProxyURL   string        `envconfig:"POLYGLOT_PROXY_URL"`
}

// LoadOptionsFromEnv reads the POLYGLOT_* environment variables and returns
// the auth key plus a TranslatorOptions. It exists for callers that wire
// configuration from the environment; the Translator itself never reads
// ambient process state.
func LoadOptionsFromEnv() (string, *TranslatorOptions, error) {
	var env envOptions
	if err := envconfig.Process("", &env); err != nil {
		return "", nil, fmt.Errorf("process environment: %w", err)
	}

	maxRetries := env.MaxRetries
	opts := &TranslatorOptions{
		ServerURL:  env.ServerURL,
		MaxRetries: &maxRetries,
		MinTimeout: env.MinTimeout,
		MaxTimeout: env.MaxTimeout,
		ProxyURL:   env.ProxyURL,
	}
	if err := opts.validate(); err != nil {
		return "", nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return env.AuthKey, opts, nil
}

// LoadEnvFile loads environment variables from the first loadable .env file,
// trying the given path, its basename, and ".env" in that order. Returns the
// path that was loaded.
func LoadEnvFile(path string) (string, error) {
	requested := strings.TrimSpace(path)
	if requested == "" {
		requested = ".env"
	}

	candidates := []string{requested}
	if base := filepath.Base(requested); base != "" && base != requested {
		candidates = append(candidates, base)
	}
	if requested != ".env" {
		candidates = append(candidates, ".env")
	}

	for _, candidate := range candidates {
		if err := godotenv.Overload(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("failed to load env file from %s", requested)
}
