package webrequest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/upcheckio/upcheck/version"
)

const (
	userAgent = "upcheck/%s"

	// DefaultTimeout bounds a single request including body read.
	DefaultTimeout = 30 * time.Second
	// DefaultSizeLimit caps the response body. Update manifests are small.
	DefaultSizeLimit = 1 << 20
)

// Response carries the outcome of a single Fetch. Err is set on
// transport-level failures; StatusCode, Header and Body are only
// meaningful when Err is nil.
type Response struct {
	Err        error
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs asynchronous HTTP GET requests.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	sizeLimit  int64
	header     http.Header
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a header to every request. Headers the transport owns
// are dropped with a warning.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if forbiddenHeader(key) {
			log.Warnf("dropping forbidden request header %q", key)
			return
		}
		c.header.Set(key, value)
	}
}

// WithSizeLimit overrides the response body cap.
func WithSizeLimit(limit int64) ClientOption {
	return func(c *Client) {
		c.sizeLimit = limit
	}
}

// NewClient creates a Client with the default timeout and size limit.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		sizeLimit:  DefaultSizeLimit,
		header:     http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues a GET for url on its own goroutine and hands the result to
// done. done is invoked exactly once per call.
func (c *Client) Fetch(ctx context.Context, url string, done func(Response)) {
	go func() {
		done(c.do(ctx, url))
	}()
}

func (c *Client) do(ctx context.Context, url string) Response {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{Err: fmt.Errorf("failed to create HTTP request: %w", err)}
	}

	req.Header.Set("User-Agent", fmt.Sprintf(userAgent, version.Version()))
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{Err: fmt.Errorf("failed to perform HTTP request: %w", err)}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warnf("error closing response body: %v", cerr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.sizeLimit))
	if err != nil {
		return Response{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
}

// forbiddenHeader reports whether the transport owns the header and
// callers must not override it.
func forbiddenHeader(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "accept-encoding", "cookie", "dnt", "host":
		return true
	}
	return strings.HasPrefix(k, "proxy-") || strings.HasPrefix(k, "sec-")
}
