package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"episodegap/internal/services"
)

const (
	serviceName = "tvdb"
	userAgent   = "episodegap/1.0.0"
)

// Client provides access to TheTVDB v4 API.
type Client struct {
	apiKey     string
	pin        string
	baseURL    string
	language   string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLanguage sets the Accept-Language header sent with every data request.
func WithLanguage(language string) Option {
	return func(c *Client) {
		c.language = strings.TrimSpace(language)
	}
}

// New creates a TheTVDB client. The pin is optional and only required for
// user-supported API keys.
func New(apiKey, pin, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tvdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tvdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		pin:        strings.TrimSpace(pin),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// Login exchanges the API key (and pin) for a bearer token. Data calls log in
// on demand, so calling Login up front only serves to surface bad credentials
// before any work starts.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	payload := map[string]string{"apikey": c.apiKey}
	if c.pin != "" {
		payload["pin"] = c.pin
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrBadResponse, serviceName, "login", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrBadResponse, serviceName, "login", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	var resp envelope[struct {
		Token string `json:"token"`
	}]
	if err := c.do(req, "login", &resp); err != nil {
		return err
	}
	if strings.TrimSpace(resp.Data.Token) == "" {
		return services.Wrap(services.ErrBadResponse, serviceName, "login", "response carried no token", nil)
	}
	c.token = resp.Data.Token
	return nil
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	if err := c.loginLocked(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

// Search finds series matching query, in provider order.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "series")
	var resp envelope[[]SearchResult]
	if err := c.get(ctx, "search", "/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SeriesExtended fetches a series with its season list.
func (c *Client) SeriesExtended(ctx context.Context, seriesID string) (*Series, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return nil, errors.New("series id must not be empty")
	}
	params := url.Values{}
	params.Set("short", "true")
	var resp envelope[Series]
	path := "/series/" + url.PathEscape(seriesID) + "/extended"
	if err := c.get(ctx, "series extended", path, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// SeasonExtended fetches a season with its episodes.
func (c *Client) SeasonExtended(ctx context.Context, seasonID int64) (*Season, error) {
	var resp envelope[Season]
	path := "/seasons/" + strconv.FormatInt(seasonID, 10) + "/extended"
	if err := c.get(ctx, "season extended", path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrBadResponse, serviceName, operation, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	return c.do(req, operation, out)
}

func (c *Client) do(req *http.Request, operation string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, serviceName, operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		message := fmt.Sprintf("%s %s returned %d", req.Method, req.URL.Path, resp.StatusCode)
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
