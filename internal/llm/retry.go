package llm

import (
	"context"
	"errors"
	"time"

	"careerlift-backend/internal/shared/metrics"
	"careerlift-backend/internal/shared/telemetry"
)

const defaultRetryBaseDelay = 300 * time.Millisecond

// RetryPolicy controls WithRetry. Attempts counts the first call.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

type retryingGenerator struct {
	base   Generator
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps base so transport failures are retried with exponential backoff.
// Invalid requests and refusals are returned immediately.
func WithRetry(base Generator, policy RetryPolicy) Generator {
	if base == nil {
		return nil
	}
	if policy.Attempts <= 1 {
		return base
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = defaultRetryBaseDelay
	}
	return &retryingGenerator{base: base, policy: policy, sleep: sleepCtx}
}

func (r *retryingGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	delay := r.policy.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		resp, err := r.base.Generate(ctx, req)
		if err == nil || !shouldRetry(ctx, err) {
			return resp, err
		}
		lastErr = err
		if attempt == r.policy.Attempts {
			break
		}
		telemetry.Info("llm.retry", map[string]any{
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
			"error":    err.Error(),
		})
		metrics.IncLLMRetry()
		if err := r.sleep(ctx, delay); err != nil {
			return Response{}, err
		}
		delay *= 2
	}
	return Response{}, lastErr
}

func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return KindOf(err) == KindTransport
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
