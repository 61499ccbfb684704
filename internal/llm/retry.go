package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retrying struct {
	inner Provider
	cfg   RetryConfig
	// sleep waits for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry retries transient failures with exponential backoff and
// ±20% jitter. Cancellation, deadlines and rejected keys fail at once; an
// unusable reply is retried a single time.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	cfg.MaxAttempts = max(1, cfg.MaxAttempts)
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	return &retrying{inner: p, cfg: cfg, sleep: sleepCtx}
}

func (r *retrying) Complete(ctx context.Context, p Prompt) (*Reply, error) {
	var err error
	invalidSeen := false
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if serr := r.sleep(ctx, r.wait(attempt-1, err)); serr != nil {
				return nil, serr
			}
		}

		var reply *Reply
		reply, err = r.inner.Complete(ctx, p)
		if err == nil {
			return reply, nil
		}
		if !transient(err) {
			return nil, err
		}
		var inv *ErrInvalidResponse
		if errors.As(err, &inv) {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
	}
	return nil, err
}

func (r *retrying) Model() string { return r.inner.Model() }

func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var auth *ErrAuthentication
	return !errors.As(err, &auth)
}

// wait is the pause after the given failed attempt. A rate limit with a
// Retry-After hint waits exactly that long.
func (r *retrying) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.cfg.InitialWait)
	for range attempt {
		d *= r.cfg.Multiplier
	}
	if r.cfg.MaxWait > 0 {
		d = min(d, float64(r.cfg.MaxWait))
	}
	d += d * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(0, d))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
