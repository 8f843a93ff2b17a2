package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		RateLimitDelay:         10 * time.Millisecond,
		MaxConcurrentRequests:  1,
		ExponentialBackoffBase: 100 * time.Millisecond,
		MaxBackoffDelay:        1 * time.Second,
	}
}

func TestWait_AppliesDelayBetweenRequests(t *testing.T) {
	limiter := NewRateLimiter(testConfig())
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second Wait failed: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 5*time.Millisecond {
		t.Errorf("Expected second request to be delayed, elapsed: %v", elapsed)
	}
}

func TestWait_CancelledContext(t *testing.T) {
	limiter := NewRateLimiter(testConfig())
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(cancelled); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestHandleResponse_TooManyRequests(t *testing.T) {
	limiter := NewRateLimiter(testConfig()).(*APIRateLimiter)

	response := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{},
	}

	err := limiter.HandleResponse(response)
	if err == nil {
		t.Fatal("Expected rate limit error for 429 response")
	}
	if !IsRateLimitError(err) {
		t.Errorf("Expected RateLimitError, got %T", err)
	}
	if limiter.consecutiveErrors != 1 {
		t.Errorf("Expected 1 consecutive error, got %d", limiter.consecutiveErrors)
	}
}

func TestHandleResponse_RetryAfterHeader(t *testing.T) {
	limiter := NewRateLimiter(testConfig()).(*APIRateLimiter)

	header := http.Header{}
	header.Set("Retry-After", "2")
	response := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     header,
	}

	err := limiter.HandleResponse(response)
	if err == nil {
		t.Fatal("Expected rate limit error")
	}

	rateLimitErr := err.(*RateLimitError)
	if rateLimitErr.RetryAfter < 1*time.Second {
		t.Errorf("Expected Retry-After to set at least 1s backoff, got %v", rateLimitErr.RetryAfter)
	}
}

func TestHandleResponse_ParsesQuotaHeaders(t *testing.T) {
	limiter := NewRateLimiter(testConfig()).(*APIRateLimiter)

	header := http.Header{}
	header.Set("X-RateLimit-Remaining", "42")
	response := &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
	}

	if err := limiter.HandleResponse(response); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if limiter.rateLimitRemaining != 42 {
		t.Errorf("Expected remaining quota 42, got %d", limiter.rateLimitRemaining)
	}
}

func TestHandleResponse_SuccessResetsErrors(t *testing.T) {
	limiter := NewRateLimiter(testConfig()).(*APIRateLimiter)
	limiter.consecutiveErrors = 3

	response := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
	}

	if err := limiter.HandleResponse(response); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if limiter.consecutiveErrors != 0 {
		t.Errorf("Expected consecutive errors reset, got %d", limiter.consecutiveErrors)
	}
}

func TestHandleResponse_NilResponse(t *testing.T) {
	limiter := NewRateLimiter(testConfig())
	if err := limiter.HandleResponse(nil); err != nil {
		t.Errorf("Expected nil response to be a no-op, got %v", err)
	}
}

func TestCalculateBackoffDelay_Exponential(t *testing.T) {
	limiter := NewRateLimiter(testConfig()).(*APIRateLimiter)

	tests := []struct {
		errors   int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{10, 1 * time.Second}, // capped at MaxBackoffDelay
	}

	for _, tt := range tests {
		limiter.consecutiveErrors = tt.errors
		if delay := limiter.calculateBackoffDelay(); delay != tt.expected {
			t.Errorf("errors=%d: expected %v, got %v", tt.errors, tt.expected, delay)
		}
	}
}

func TestAcquireSlot_Concurrency(t *testing.T) {
	limiter := NewRateLimiter(testConfig())
	ctx := context.Background()

	if err := limiter.AcquireSlot(ctx); err != nil {
		t.Fatalf("first AcquireSlot failed: %v", err)
	}

	// Second acquisition must block until release with MaxConcurrentRequests=1
	blocked, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.AcquireSlot(blocked); err == nil {
		t.Error("Expected second AcquireSlot to block and time out")
	}

	limiter.ReleaseSlot()
	if err := limiter.AcquireSlot(ctx); err != nil {
		t.Errorf("AcquireSlot after release failed: %v", err)
	}
}
