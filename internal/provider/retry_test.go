package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRetryPolicyDo(t *testing.T) {
	t.Parallel()

	t.Run("retries retryable statuses up to the limit", func(t *testing.T) {
		t.Parallel()
		p := RetryPolicy{MaxAttempts: 3, Retryable: RetryOnStatus(http.StatusTooManyRequests)}
		calls := 0
		status, err := p.Do(context.Background(), func(context.Context) (int, time.Duration, error) {
			calls++
			return http.StatusTooManyRequests, 0, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != http.StatusTooManyRequests || calls != 3 {
			t.Errorf("status=%d calls=%d, want 429 and 3", status, calls)
		}
	})

	t.Run("stops on success", func(t *testing.T) {
		t.Parallel()
		p := RetryPolicy{MaxAttempts: 5, Retryable: RetryOnTransient}
		calls := 0
		status, err := p.Do(context.Background(), func(context.Context) (int, time.Duration, error) {
			calls++
			if calls == 1 {
				return http.StatusBadGateway, 0, nil
			}
			return http.StatusOK, 0, nil
		})
		if err != nil || status != http.StatusOK || calls != 2 {
			t.Errorf("status=%d err=%v calls=%d", status, err, calls)
		}
	})

	t.Run("no retry makes one attempt", func(t *testing.T) {
		t.Parallel()
		calls := 0
		_, _ = NoRetry().Do(context.Background(), func(context.Context) (int, time.Duration, error) {
			calls++
			return http.StatusInternalServerError, 0, nil
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		p := RetryPolicy{MaxAttempts: 2, Backoff: []time.Duration{time.Hour}, Retryable: RetryOnTransient}
		_, err := p.Do(ctx, func(context.Context) (int, time.Duration, error) {
			cancel()
			return http.StatusServiceUnavailable, 0, nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRetryOnTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		err    error
		want   bool
	}{
		{"ok", http.StatusOK, nil, false},
		{"not found", http.StatusNotFound, nil, false},
		{"rate limited", http.StatusTooManyRequests, nil, true},
		{"server error", http.StatusInternalServerError, nil, true},
		{"network error", 0, errors.New("connection reset"), true},
		{"deadline", 0, context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RetryOnTransient(tt.status, tt.err); got != tt.want {
				t.Errorf("RetryOnTransient(%d, %v) = %v, want %v", tt.status, tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{Backoff: []time.Duration{time.Second, 2 * time.Second}}
	if p.delay(0) != time.Second || p.delay(1) != 2*time.Second || p.delay(5) != 2*time.Second {
		t.Errorf("unexpected delays: %v %v %v", p.delay(0), p.delay(1), p.delay(5))
	}
	if (RetryPolicy{}).delay(0) != 0 {
		t.Error("empty backoff should not wait")
	}
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	header := func(v string) http.Header {
		h := http.Header{}
		h.Set("Retry-After", v)
		return h
	}
	tests := []struct {
		name string
		resp *response
		want time.Duration
	}{
		{"429 with seconds", &response{status: 429, header: header("3")}, 3 * time.Second},
		{"capped", &response{status: 429, header: header("600")}, maxRetryAfter},
		{"ignored on 200", &response{status: 200, header: header("3")}, 0},
		{"missing header", &response{status: 503, header: http.Header{}}, 0},
		{"http date is ignored", &response{status: 503, header: header("Wed, 21 Oct 2015 07:28:00 GMT")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := retryAfter(tt.resp); got != tt.want {
				t.Errorf("retryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResult(t *testing.T) {
	t.Parallel()

	ok := Success[string]("p", nil)
	if !ok.OK() || ok.Items == nil || len(ok.List()) != 0 {
		t.Errorf("empty success should be OK with a non-nil list: %+v", ok)
	}
	failed := Failure[string]("p", "")
	if failed.OK() || failed.Reason == "" || failed.List() == nil {
		t.Errorf("failure should carry a reason and an empty list: %+v", failed)
	}
}
