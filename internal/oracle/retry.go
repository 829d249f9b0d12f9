package oracle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/joelkehle/claimestimate/internal/claims"
)

const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 90 * time.Second
)

// Retrying owns timeout and retry policy for another Client. Timeouts, rate
// limits and server errors are retried; everything else returns at once.
type Retrying struct {
	next        Client
	maxAttempts int
	timeout     time.Duration
	backoff     func(attempt int) time.Duration
	log         *zap.Logger
}

func NewRetrying(next Client, maxAttempts int, timeout time.Duration, log *zap.Logger) *Retrying {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrying{
		next:        next,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		backoff:     backoffDelay,
		log:         log,
	}
}

func (r *Retrying) Send(ctx context.Context, req Request) (string, error) {
	for attempt := 1; ; attempt++ {
		text, err := r.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", claims.NewError(claims.CodeNetworkFailure, "request abandoned", ctx.Err())
		}
		class := classifyTransportError(err)
		if !class.retryable() || attempt >= r.maxAttempts {
			return "", transportError("oracle", err)
		}
		delay := r.backoff(attempt)
		r.log.Warn("oracle attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("class", class.String()),
			zap.Duration("backoff", delay),
			zap.Error(err))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", claims.NewError(claims.CodeNetworkFailure, "request abandoned", ctx.Err())
		case <-timer.C:
		}
	}
}

func (r *Retrying) attempt(ctx context.Context, req Request) (string, error) {
	if r.timeout <= 0 {
		return r.next.Send(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.Send(attemptCtx, req)
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
