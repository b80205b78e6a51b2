package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"episodegap/internal/services"
)

const (
	productName    = "episodegap"
	productVersion = "1.0.0"
	userAgent      = "episodegap/1.0.0"
	serviceName    = "plex"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to a single Plex Media Server.
type Client struct {
	baseURL          string
	token            string
	clientIdentifier string
	http             HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithTimeout sets the timeout of the default HTTP backend.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// New constructs a Plex client. clientIdentifier is sent as
// X-Plex-Client-Identifier so the server can tell runs apart.
func New(baseURL, token, clientIdentifier string, opts ...Option) *Client {
	c := &Client{
		baseURL:          strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:            strings.TrimSpace(token),
		clientIdentifier: strings.TrimSpace(clientIdentifier),
		http:             &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, operation, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrBadResponse, serviceName, operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	applyStandardHeaders(req, c.clientIdentifier)
	if c.token != "" {
		req.Header.Set("X-Plex-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, serviceName, operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := fmt.Sprintf("GET %s returned %d", path, resp.StatusCode)
		if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			message += ": " + trimmed
		}
		return services.Wrap(services.MarkerForStatus(resp.StatusCode), serviceName, operation, message, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrBadResponse, serviceName, operation, "decode response", err)
	}
	return nil
}

func applyStandardHeaders(req *http.Request, clientIdentifier string) {
	if clientIdentifier != "" {
		req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	}
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Device-Name", productName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
}
