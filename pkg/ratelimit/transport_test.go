package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

// recordingRoundTripper captures the outgoing request
type recordingRoundTripper struct {
	request  *http.Request
	response *http.Response
	err      error
}

func (rt *recordingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.request = req
	return rt.response, rt.err
}

func makeRequest(t *testing.T, transport *Transport) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/resource", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}
	return resp
}

func TestTransport_BearerAuth(t *testing.T) {
	base := &recordingRoundTripper{response: &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}}
	transport := NewTransport("gh-token", AuthBearer, NewMockRateLimiter())
	transport.Base = base

	makeRequest(t, transport)

	if got := base.request.Header.Get("Authorization"); got != "Bearer gh-token" {
		t.Errorf("Expected 'Bearer gh-token', got %q", got)
	}
	if got := base.request.Header.Get("PRIVATE-TOKEN"); got != "" {
		t.Errorf("Expected no PRIVATE-TOKEN header, got %q", got)
	}
}

func TestTransport_PrivateTokenAuth(t *testing.T) {
	base := &recordingRoundTripper{response: &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}}
	transport := NewTransport("gl-token", AuthPrivateToken, NewMockRateLimiter())
	transport.Base = base

	makeRequest(t, transport)

	if got := base.request.Header.Get("PRIVATE-TOKEN"); got != "gl-token" {
		t.Errorf("Expected 'gl-token', got %q", got)
	}
	if got := base.request.Header.Get("Authorization"); got != "" {
		t.Errorf("Expected no Authorization header, got %q", got)
	}
}

func TestTransport_EmptyTokenIsAnonymous(t *testing.T) {
	base := &recordingRoundTripper{response: &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}}
	transport := NewTransport("", AuthPrivateToken, NewMockRateLimiter())
	transport.Base = base

	makeRequest(t, transport)

	if got := base.request.Header.Get("PRIVATE-TOKEN"); got != "" {
		t.Errorf("Expected no auth header for empty token, got %q", got)
	}
}

func TestTransport_RateLimiterLifecycle(t *testing.T) {
	base := &recordingRoundTripper{response: &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}}
	mock := NewMockRateLimiter()
	transport := NewTransport("token", AuthBearer, mock)
	transport.Base = base

	makeRequest(t, transport)

	if len(mock.AcquireSlotCalls) != 1 {
		t.Errorf("Expected 1 AcquireSlot call, got %d", len(mock.AcquireSlotCalls))
	}
	if len(mock.WaitCalls) != 1 {
		t.Errorf("Expected 1 Wait call, got %d", len(mock.WaitCalls))
	}
	if len(mock.HandleResponseCalls) != 1 {
		t.Errorf("Expected 1 HandleResponse call, got %d", len(mock.HandleResponseCalls))
	}
	if mock.ReleaseSlotCalls != 1 {
		t.Errorf("Expected 1 ReleaseSlot call, got %d", mock.ReleaseSlotCalls)
	}
}

func TestTransport_WaitErrorAborts(t *testing.T) {
	base := &recordingRoundTripper{response: &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}}
	mock := NewMockRateLimiter()
	mock.WaitFunc = func(ctx context.Context) error { return errors.New("rate limited") }
	transport := NewTransport("token", AuthBearer, mock)
	transport.Base = base

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/resource", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	if _, err := transport.RoundTrip(req); err == nil {
		t.Error("Expected RoundTrip to fail when Wait fails")
	}
	if base.request != nil {
		t.Error("Expected no request to reach the base transport")
	}
}
