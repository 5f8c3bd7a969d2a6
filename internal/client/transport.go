// ABOUTME: Request authorization pipeline for every outbound API call
// ABOUTME: Attaches the bearer token and evicts the session on 401 responses

package client

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id for correlating client and server logs
const RequestIDHeader = "X-Request-ID"

// Credentials is the pipeline's view of the session: read the token, force eviction
type Credentials interface {
	Token() string
	Evict()
}

// authTransport wraps a base RoundTripper with credential attachment and 401 handling
type authTransport struct {
	base   http.RoundTripper
	logger *slog.Logger

	mu    sync.RWMutex
	creds Credentials
}

func newAuthTransport(base http.RoundTripper, logger *slog.Logger) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, logger: logger}
}

func (t *authTransport) setCredentials(creds Credentials) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.creds = creds
}

func (t *authTransport) credentials() Credentials {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.creds
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	creds := t.credentials()

	// RoundTrippers must not modify the caller's request
	out := req.Clone(req.Context())
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if creds != nil {
		if token := creds.Token(); token != "" {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && creds != nil {
		t.logger.Warn("Unauthorized response, evicting session",
			"method", out.Method,
			"path", out.URL.Path,
			"request_id", out.Header.Get(RequestIDHeader))
		creds.Evict()
	}

	return resp, nil
}
