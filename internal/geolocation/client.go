package geolocation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/evyataryagoni/iptracker/internal/models"
)

const (
	DefaultLookupURL = "https://geo.ipify.org/api/v2/country,city"
	DefaultSelfURL   = "http://ip-api.com/json/"

	// maxBodySize caps how much of a response body is read
	maxBodySize = 1 << 20
)

// ClientConfig configures the HTTP geolocation client
type ClientConfig struct {
	APIKey     string        // Sent as the apiKey query parameter on lookups
	LookupURL  string        // IP/domain lookup endpoint
	SelfURL    string        // Self-IP endpoint, called without parameters
	Timeout    time.Duration // 0 disables the client-side timeout
	HTTPClient *http.Client  // Optional, mainly for tests
}

// Client talks to the geolocation APIs over HTTP.
// It issues exactly one request per call and never retries.
type Client struct {
	httpClient *http.Client
	apiKey     string
	lookupURL  string
	selfURL    string
}

// NewClient creates a client, filling in default endpoints
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.LookupURL == "" {
		cfg.LookupURL = DefaultLookupURL
	}
	if cfg.SelfURL == "" {
		cfg.SelfURL = DefaultSelfURL
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		lookupURL:  cfg.LookupURL,
		selfURL:    cfg.SelfURL,
	}
}

// Lookup resolves an IP address or domain.
//
// The query is sent as ipAddress, domain and Address at once; the API picks
// whichever matches the input.
func (c *Client) Lookup(ctx context.Context, query string) (*models.LookupResult, error) {
	endpoint, err := url.Parse(c.lookupURL)
	if err != nil {
		return nil, fmt.Errorf("parse lookup URL: %w", err)
	}

	params := endpoint.Query()
	params.Set("apiKey", c.apiKey)
	params.Set("ipAddress", query)
	params.Set("domain", query)
	params.Set("Address", query)
	endpoint.RawQuery = params.Encode()

	return c.fetch(ctx, endpoint.String())
}

// LookupSelf resolves the public IP address the request originates from
func (c *Client) LookupSelf(ctx context.Context) (*models.LookupResult, error) {
	return c.fetch(ctx, c.selfURL)
}

func (c *Client) fetch(ctx context.Context, requestURL string) (*models.LookupResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request geolocation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read geolocation API response: %w", err)
	}

	return ParseResult(body)
}
