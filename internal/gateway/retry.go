package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds how long a single page request may take and how often it is repeated.
type RetryPolicy struct {
	// Timeout applies to each attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after the first failure.
	MaxRetries uint64
	// InitialInterval is the first backoff delay. Zero uses the backoff package default.
	InitialInterval time.Duration
}

type retryingSource struct {
	next   PageSource
	policy RetryPolicy
	logger *zap.SugaredLogger
}

// WithRetry wraps source so that a failed page request is repeated with the same cursor,
// up to policy.MaxRetries times with exponential backoff. Cancellation of ctx is never retried.
func WithRetry(source PageSource, policy RetryPolicy, logger *zap.SugaredLogger) PageSource {
	return &retryingSource{next: source, policy: policy, logger: logger}
}

func (r *retryingSource) FetchPage(ctx context.Context, cursor *string) (*Page, error) {
	var page *Page
	attempt := 0
	op := func() error {
		attempt++
		attemptCtx := ctx
		if r.policy.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
			defer cancel()
		}
		p, err := r.next.FetchPage(attemptCtx, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		eb.InitialInterval = r.policy.InitialInterval
	}
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, r.policy.MaxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		r.logger.Warnw("page request failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return page, nil
}
