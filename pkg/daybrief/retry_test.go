package daybrief

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteWithPolicyRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	policy := retryPolicy{MaxAttempts: 3}
	got, err := executeWithPolicy(context.Background(), policy, func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || attempts != 3 {
		t.Fatalf("got %q after %d attempts", got, attempts)
	}
}

func TestExecuteWithPolicyExhaustsAttempts(t *testing.T) {
	attempts := 0
	wantErr := errors.New("always fails")
	policy := retryPolicy{MaxAttempts: 3}
	_, err := executeWithPolicy(context.Background(), policy, func(context.Context) (int, error) {
		attempts++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteWithPolicyNonRetryableStopsEarly(t *testing.T) {
	attempts := 0
	fatal := errors.New("fatal")
	policy := retryPolicy{
		MaxAttempts: 5,
		RetryableFn: func(err error) bool { return !errors.Is(err, fatal) },
	}
	_, err := executeWithPolicy(context.Background(), policy, func(context.Context) (int, error) {
		attempts++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteWithPolicyHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	policy := retryPolicy{MaxAttempts: 10, Backoff: []time.Duration{time.Hour}}
	done := make(chan struct{})
	var err error
	go func() {
		_, err = executeWithPolicy(ctx, policy, func(context.Context) (int, error) {
			attempts++
			return 0, errors.New("transient")
		})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("executeWithPolicy did not return after cancel")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt before blocking on backoff, got %d", attempts)
	}
}

func TestDelayBeforeRetryRepeatsLastEntry(t *testing.T) {
	policy := retryPolicy{Backoff: []time.Duration{time.Second, 2 * time.Second}}
	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 2 * time.Second},
		{9, 2 * time.Second},
	}
	for _, tt := range tests {
		if got := policy.delayBeforeRetry(tt.retry); got != tt.want {
			t.Fatalf("delayBeforeRetry(%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}
	empty := retryPolicy{}
	if got := empty.delayBeforeRetry(0); got != 0 {
		t.Fatalf("empty backoff should be 0, got %v", got)
	}
}
