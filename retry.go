package polyglot

import (
	"context"
	"math"
	"math/rand/v2"
	"net/url"
	"time"
)

// backoffConfig bounds the retry loop for one logical request.
type backoffConfig struct {
	// maxRetries is the number of retry attempts, not counting the initial
	// attempt. Zero means exactly one attempt.
	maxRetries int
	// minTimeout is the delay before the first retry.
	minTimeout time.Duration
	// maxTimeout caps the delay between attempts.
	maxTimeout time.Duration
}

// sleepFunc suspends for d or until ctx is done, whichever comes first.
// Injectable so tests run without real sleeps.
type sleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoffDelay computes the delay before retry n: min(maxTimeout,
// minTimeout * 2^n) scaled by a jitter factor in [0.5, 1.0].
func backoffDelay(cfg backoffConfig, n int, randFloat func() float64) time.Duration {
	base := cfg.minTimeout
	if base <= 0 {
		base = defaultMinTimeout
	}
	ceiling := cfg.maxTimeout
	if ceiling <= 0 {
		ceiling = defaultMaxTimeout
	}

	d := time.Duration(float64(base) * math.Pow(2, float64(n)))
	if d > ceiling || d <= 0 {
		d = ceiling
	}

	if randFloat == nil {
		randFloat = rand.Float64
	}
	jitter := 0.5 + 0.5*randFloat()
	return time.Duration(float64(d) * jitter)
}

// callWithRetry drives one logical request through the transport until the
// outcome is non-retryable or the attempt budget is spent. The retry state
// (attempt counter, last Retry-After hint) lives entirely on this stack frame
// and never outlives the call.
func (t *Translator) callWithRetry(ctx context.Context, method, path string, query url.Values, body bodyFunc) (*apiResponse, error) {
	cfg := t.backoff

	var lastResp *apiResponse
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := t.transport.do(ctx, method, path, query, body)
		if err == nil && !retryableStatus(resp.status) {
			return resp, nil
		}
		lastResp, lastErr = resp, err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= cfg.maxRetries {
			return lastResp, lastErr
		}

		delay := backoffDelay(cfg, attempt, t.randFloat)
		if hint, ok := retryAfterHint(resp); ok && hint > delay {
			delay = hint
		}

		t.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("retrying request")

		if sleepErr := t.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

// callAPI runs one logical request and classifies its outcome: a 2xx
// response is returned as-is, everything else becomes exactly one member of
// the error taxonomy.
func (t *Translator) callAPI(ctx context.Context, method, path string, query url.Values, body bodyFunc) (*apiResponse, error) {
	resp, err := t.callWithRetry(ctx, method, path, query, body)
	if err != nil {
		return nil, connectionFailure(err)
	}
	if resp.status >= 200 && resp.status < 300 {
		return resp, nil
	}
	return nil, classifyStatusError(resp.status, resp.body)
}
