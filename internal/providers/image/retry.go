package image

import (
	"context"
	"fmt"
	"time"

	"posterlab/internal/domain"
	"posterlab/internal/infra"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type RetryOptions struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       SleepFunc
	Logger      *infra.Logger
}

// Retrying wraps a provider with bounded exponential backoff. Only errors the
// provider marks retryable (5xx and timeouts) are attempted again.
type Retrying struct {
	next        Provider
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
	logger      *infra.Logger
}

func NewRetrying(next Provider, opts RetryOptions) *Retrying {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Retrying{
		next:        next,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleep,
		logger:      infra.LoggerOrDiscard(opts.Logger),
	}
}

func (r *Retrying) Name() string { return r.next.Name() }

func (r *Retrying) Configured() bool { return r.next.Configured() }

func (r *Retrying) Ping(ctx context.Context) error { return r.next.Ping(ctx) }

func (r *Retrying) Generate(ctx context.Context, req Request) (Image, error) {
	for attempt := 1; ; attempt++ {
		img, err := r.next.Generate(ctx, req)
		if err == nil {
			if attempt > 1 {
				r.logger.Info().Str("provider", r.next.Name()).Int("attempt", attempt).Msg("image: succeeded after retry")
			}
			return img, nil
		}
		pe, ok := domain.AsProviderError(err)
		if !ok || !pe.Retryable() {
			return Image{}, err
		}
		if attempt >= r.maxAttempts {
			return Image{}, fmt.Errorf("%s: exhausted %d attempts: %w", r.next.Name(), attempt, err)
		}
		delay := r.baseDelay << (attempt - 1)
		r.logger.Warn().
			Err(err).
			Str("provider", r.next.Name()).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("image: retrying after transient failure")
		if err := r.sleep(ctx, delay); err != nil {
			return Image{}, domain.NewTransportError(r.next.Name(), err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ Provider = (*Retrying)(nil)
