// Package edge provides the EdgeGrid-signed HTTP client used by every
// resource fetcher.
package edge

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akamai/AkamaiOPEN-edgegrid-golang/v9/pkg/edgegrid"

	"github.com/edgeshift/edgeshift/internal/config"
)

const (
	connectTimeout = 10 * time.Second
	readTimeout    = 60 * time.Second

	// maxErrBody caps how much of an error response body is carried in the
	// returned error.
	maxErrBody = 512
)

// APIError is a non-2xx response from the Akamai APIs.
type APIError struct {
	Path   string
	Body   string
	Status int
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.Path, e.Status, e.Body)
}

// Client performs signed GET requests against one account's EdgeGrid host.
// When an account switch key is configured it is appended to every query
// string.
type Client struct {
	httpClient  *http.Client
	signer      *edgegrid.Config
	requestHook func(path string)
	baseURL     string
	switchKey   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the https://{host} base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithRequestHook registers a callback invoked once per outbound request
// with the relative path. Used for run statistics.
func WithRequestHook(fn func(path string)) Option {
	return func(c *Client) { c.requestHook = fn }
}

// New builds a signed client from credentials. Connect and read timeouts are
// distinct fixed values; there are no retries.
func New(creds config.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://" + strings.TrimSuffix(creds.Host, "/"),
		signer: &edgegrid.Config{
			Host:         creds.Host,
			ClientToken:  creds.ClientToken,
			ClientSecret: creds.ClientSecret,
			AccessToken:  creds.AccessToken,
			MaxBody:      131072,
		},
		switchKey: creds.AccountSwitchKey,
		httpClient: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext:       (&net.Dialer{Timeout: connectTimeout}).DialContext,
				ForceAttemptHTTP2: true,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get performs one signed GET against a relative path and returns the raw
// body. Non-2xx responses are returned as *APIError.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u, err := c.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.signer.SignRequest(req)

	if c.requestHook != nil {
		c.requestHook(path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: reading body: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrBody {
			snippet = snippet[:maxErrBody]
		}
		return nil, &APIError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}

	return body, nil
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("building URL for %s: %w", path, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.switchKey != "" {
		q.Set("accountSwitchKey", c.switchKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
