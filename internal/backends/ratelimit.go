package backends

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// optRateLimitRPS overrides a backend's request rate, set via
// `corpus config set-credential <backend> rate_limit_rps <value>`.
// A zero value disables throttling even where the backend defaults to it.
const optRateLimitRPS = "rate_limit_rps"

// defaultBackoff applies when a throttled response carries no
// retry-after hint.
const defaultBackoff = 60 * time.Second

// RateLimitConfig holds throttling configuration for one backend session.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size. Non-positive values derive
	// the burst from the sustained rate.
	BurstSize int
}

// RateLimiter throttles backend requests. It uses a token bucket plus
// a backoff window for explicit too-many-requests responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RequestsPerSecond))
		if burst < 1 {
			burst = 1
		}
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate
// limit. It also respects any backoff period set by RecordBackoff.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordBackoff opens a backoff window after a too-many-requests
// response. Subsequent Waits block until the window passes.
func (r *RateLimiter) RecordBackoff(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}

	r.mu.Lock()
	r.retryAt = time.Now().Add(retryAfter)
	r.mu.Unlock()
}

// Allow reports whether a request can be made immediately without
// blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// Ensure the decorator implements the interface.
var _ driven.RemoteFS = (*throttledFS)(nil)

// throttledFS decorates a RemoteFS so every backend call first clears
// the session's rate limiter. Workers share one limiter per session,
// so concurrent fetches contend for the same token bucket.
type throttledFS struct {
	inner   driven.RemoteFS
	limiter *RateLimiter
}

// Throttle wraps fs so List and Fetch wait on limiter before reaching
// the backend.
func Throttle(fs driven.RemoteFS, limiter *RateLimiter) driven.RemoteFS {
	return &throttledFS{inner: fs, limiter: limiter}
}

func (t *throttledFS) List(ctx context.Context, path string, recursive bool) ([]driven.ObjectInfo, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.List(ctx, path, recursive)
}

func (t *throttledFS) Fetch(ctx context.Context, remoteKey, localPath string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.inner.Fetch(ctx, remoteKey, localPath)
}

func (t *throttledFS) Close() error {
	return t.inner.Close()
}

// RateLimited decorates factory so produced sessions are throttled.
// The sustained rate comes from the rate_limit_rps access option when
// present, falling back to defaultRPS; when the resulting rate is zero
// the session is handed back unwrapped.
func RateLimited(factory driven.BackendFactory, defaultRPS float64) driven.BackendFactory {
	return func(ctx context.Context, addr domain.BackendAddress, options map[string]string) (driven.RemoteFS, error) {
		rps := defaultRPS
		if raw, ok := options[optRateLimitRPS]; ok {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed < 0 {
				return nil, fmt.Errorf("invalid %s value %q", optRateLimitRPS, raw)
			}
			rps = parsed
		}

		fs, err := factory(ctx, addr, options)
		if err != nil {
			return nil, err
		}
		if rps <= 0 {
			return fs, nil
		}
		return Throttle(fs, NewRateLimiter(RateLimitConfig{RequestsPerSecond: rps})), nil
	}
}
