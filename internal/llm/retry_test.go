package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedProvider returns one canned result per attempt, in order.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Generate(_ context.Context, _ string, _ int) (string, error) {
	i := p.calls
	p.calls++
	if i >= len(p.errs) {
		i = len(p.errs) - 1
	}
	return p.responses[i], p.errs[i]
}

func (p *scriptedProvider) IsConfigured() bool { return true }

func newTestCaller(p Provider, maxAttempts int, base, cap time.Duration) (*Caller, *[]time.Duration) {
	c := NewCaller(p, maxAttempts, base, cap, time.Minute, 512)
	var delays []time.Duration
	c.wait = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return c, &delays
}

func TestCallSucceedsFirstAttempt(t *testing.T) {
	p := &scriptedProvider{responses: []string{"ok"}, errs: []error{nil}}
	c, delays := newTestCaller(p, 3, time.Second, 10*time.Second)

	text, err := c.Call(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" {
		t.Errorf("expected 'ok', got %q", text)
	}
	if len(*delays) != 0 {
		t.Errorf("expected no backoff waits, got %v", *delays)
	}
}

func TestCallRetriesTransientThenSucceeds(t *testing.T) {
	p := &scriptedProvider{
		responses: []string{"", "", "ok"},
		errs:      []error{&APIError{StatusCode: 503}, &APIError{StatusCode: 429}, nil},
	}
	c, delays := newTestCaller(p, 3, time.Second, 10*time.Second)

	text, err := c.Call(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" {
		t.Errorf("expected 'ok', got %q", text)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", p.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("expected %d waits, got %v", len(want), *delays)
	}
	for i, d := range *delays {
		if d != want[i] {
			t.Errorf("wait %d: expected %v, got %v", i, want[i], d)
		}
	}
}

func TestCallNeverExceedsAttemptCap(t *testing.T) {
	p := &scriptedProvider{
		responses: []string{"", "", "", ""},
		errs: []error{
			context.DeadlineExceeded, context.DeadlineExceeded,
			context.DeadlineExceeded, context.DeadlineExceeded,
		},
	}
	c, _ := newTestCaller(p, 3, time.Second, 10*time.Second)

	_, err := c.Call(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if p.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", p.calls)
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T", err)
	}
	if callErr.Reason != ReasonTimeout {
		t.Errorf("expected reason %q, got %q", ReasonTimeout, callErr.Reason)
	}
	if callErr.Attempts != 3 {
		t.Errorf("expected 3 attempts recorded, got %d", callErr.Attempts)
	}
}

func TestCallFatalNotRetried(t *testing.T) {
	p := &scriptedProvider{
		responses: []string{""},
		errs:      []error{&APIError{StatusCode: 400, Body: "bad prompt"}},
	}
	c, delays := newTestCaller(p, 3, time.Second, 10*time.Second)

	_, err := c.Call(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if p.calls != 1 {
		t.Errorf("expected 1 attempt for fatal error, got %d", p.calls)
	}
	if len(*delays) != 0 {
		t.Errorf("expected no waits for fatal error, got %v", *delays)
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T", err)
	}
	if !callErr.Fatal {
		t.Error("expected Fatal to be set")
	}
	if callErr.Reason != ReasonBadRequest {
		t.Errorf("expected reason %q, got %q", ReasonBadRequest, callErr.Reason)
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	p := &scriptedProvider{
		responses: []string{"", "", "", "", "", ""},
		errs: []error{
			&APIError{StatusCode: 500}, &APIError{StatusCode: 500},
			&APIError{StatusCode: 500}, &APIError{StatusCode: 500},
			&APIError{StatusCode: 500}, &APIError{StatusCode: 500},
		},
	}
	c, delays := newTestCaller(p, 6, time.Second, 10*time.Second)

	_, err := c.Call(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}

	// min(1s * 2^(n-1), 10s) for n = 1..5
	want := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 10 * time.Second,
	}
	if len(*delays) != len(want) {
		t.Fatalf("expected %d waits, got %d: %v", len(want), len(*delays), *delays)
	}
	for i, d := range *delays {
		if d != want[i] {
			t.Errorf("wait %d: expected %v, got %v", i, want[i], d)
		}
	}
}

func TestCallStopsOnCanceledContext(t *testing.T) {
	p := &scriptedProvider{
		responses: []string{""},
		errs:      []error{&APIError{StatusCode: 503}},
	}
	c := NewCaller(p, 5, time.Second, 10*time.Second, time.Minute, 512)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Call(ctx, "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if p.calls != 0 {
		t.Errorf("expected no attempts on canceled context, got %d", p.calls)
	}
}
