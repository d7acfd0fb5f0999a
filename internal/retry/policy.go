package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/figicons/internal/config"
)

// Policy decides how often and how long to wait before re-sending an export
// batch. MaxRetries counts attempts after the first; zero disables retries.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int
}

// DefaultPolicy never retries. A batch failure ends the run, same as without
// a policy.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffExponential, Initial: time.Second, Max: 10 * time.Second, MaxRetries: 0}
}

// NewPolicy overlays the given values on DefaultPolicy. Non-positive durations,
// negative retry counts and unknown modes keep the default.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromConfig builds a policy from the export retry section.
func FromConfig(rc config.RetryConfig) Policy {
	return NewPolicy(config.NormalizeRetryBackoff(rc.Backoff), rc.Initial, rc.Max, rc.MaxRetries)
}

// Enabled reports whether the policy allows at least one retry.
func (p Policy) Enabled() bool { return p.MaxRetries > 0 }

// Delay is the wait before retry n (1-based), capped at Max.
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		d := p.Initial * (1 << (retryCount - 1))
		if d > p.Max || d <= 0 {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}

// Do runs fn until it succeeds, returns an error shouldRetry rejects, or the
// policy's retries are exhausted. onRetry, when set, is called before each wait
// with the 1-based retry number and the error that triggered it.
func (p Policy) Do(ctx context.Context, fn func() error, shouldRetry func(error) bool, onRetry func(int, error)) error {
	err := fn()
	for attempt := 1; err != nil && attempt <= p.MaxRetries; attempt++ {
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		err = fn()
	}
	return err
}
