package llm

import (
	"context"
	"fmt"
	"time"
)

// CallError is the tagged failure result of an exhausted or aborted call.
type CallError struct {
	Reason   string
	Fatal    bool
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s) (%s): %v", e.Attempts, e.Reason, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Caller wraps a Provider with retry, backoff, and per-attempt timeouts.
//
// The attempt loop is: Attempting -> Success, or Attempting -> transient
// failure -> backoff wait -> Attempting, up to MaxAttempts. A fatal
// classification stops the loop immediately. The delay before retry n+1 is
// min(BackoffBase * 2^(n-1), BackoffCap).
type Caller struct {
	provider    Provider
	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration
	callTimeout time.Duration
	maxTokens   int

	// wait is replaceable in tests to observe delays without sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

// NewCaller creates a retrying caller around a provider.
func NewCaller(provider Provider, maxAttempts int, backoffBase, backoffCap, callTimeout time.Duration, maxTokens int) *Caller {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if callTimeout <= 0 {
		callTimeout = 60 * time.Second
	}
	return &Caller{
		provider:    provider,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		backoffCap:  backoffCap,
		callTimeout: callTimeout,
		maxTokens:   maxTokens,
		wait:        defaultWait,
	}
}

// Call sends the prompt, retrying transient failures. The returned error is
// always a *CallError carrying the last failure's classified reason; no
// panic or raw transport error escapes.
func (c *Caller) Call(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	var lastReason string

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			reason, _ := Classify(err)
			return "", &CallError{Reason: reason, Attempts: attempt - 1, Err: err}
		}

		// The attempt runs under its own timeout, detached from the batch
		// deadline: an expiring run lets the current attempt finish and
		// stops before the next one.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		text, err := c.provider.Generate(callCtx, prompt, c.maxTokens)
		cancel()
		if err == nil {
			return text, nil
		}

		reason, transient := Classify(err)
		lastErr = err
		lastReason = reason

		if !transient {
			return "", &CallError{Reason: reason, Fatal: true, Attempts: attempt, Err: err}
		}
		if attempt == c.maxAttempts {
			break
		}

		delay := c.backoff(attempt)
		if err := c.wait(ctx, delay); err != nil {
			return "", &CallError{Reason: ReasonCanceled, Attempts: attempt, Err: err}
		}
	}

	return "", &CallError{Reason: lastReason, Attempts: c.maxAttempts, Err: lastErr}
}

// backoff returns the delay between attempt n and n+1.
func (c *Caller) backoff(attempt int) time.Duration {
	d := c.backoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= c.backoffCap {
			return c.backoffCap
		}
	}
	if c.backoffCap > 0 && d > c.backoffCap {
		return c.backoffCap
	}
	return d
}

func defaultWait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
