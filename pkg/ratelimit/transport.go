package ratelimit

import (
	"net/http"
)

// AuthScheme selects how the token is attached to outgoing requests.
type AuthScheme int

const (
	// AuthBearer sets "Authorization: Bearer <token>" (GitHub).
	AuthBearer AuthScheme = iota
	// AuthPrivateToken sets the "PRIVATE-TOKEN" header (GitLab).
	AuthPrivateToken
)

// Transport wraps an HTTP transport with rate limiting and token
// authentication. With an empty token, requests go out unauthenticated
// (anonymous source access).
type Transport struct {
	// Base transport for actual HTTP operations
	Base http.RoundTripper

	// Rate limiter for controlling request frequency
	RateLimiter RateLimiter

	Token  string
	Scheme AuthScheme
}

// NewTransport creates a rate-limited authenticating HTTP transport
func NewTransport(token string, scheme AuthScheme, rateLimiter RateLimiter) *Transport {
	return &Transport{
		Base:        http.DefaultTransport,
		RateLimiter: rateLimiter,
		Token:       token,
		Scheme:      scheme,
	}
}

// RoundTrip implements http.RoundTripper with auth and rate limiting
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Acquire concurrency slot
	if err := t.RateLimiter.AcquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.RateLimiter.ReleaseSlot()

	// Wait for rate limiting
	if err := t.RateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	if t.Token != "" {
		switch t.Scheme {
		case AuthPrivateToken:
			req.Header.Set("PRIVATE-TOKEN", t.Token)
		default:
			req.Header.Set("Authorization", "Bearer "+t.Token)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// Execute the actual HTTP request
	response, err := base.RoundTrip(req)

	// Feed the response back for rate limiting adjustments. A rate limit
	// error here only updates backoff state; the original response is still
	// returned and the caller decides how to handle it.
	if response != nil {
		_ = t.RateLimiter.HandleResponse(response)
	}

	return response, err
}
