package httpclient

import (
	"net/http"
	"time"
)

func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// NewWithAuth returns a client that attaches a static bearer token to every
// request. Used for service-to-service calls against the account API.
func NewWithAuth(timeout time.Duration, token string) *http.Client {
	c := New(timeout)
	if token != "" {
		c.Transport = &bearerTransport{token: token, base: http.DefaultTransport}
	}
	return c
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}
