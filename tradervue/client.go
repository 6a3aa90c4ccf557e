// Package tradervue implements a client for the Tradervue REST API:
// trades, executions imports, journal and notes collections, and the
// org-manager user endpoints.
package tradervue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public Tradervue service.
const DefaultBaseURL = "https://www.tradervue.com"

const apiPrefix = "/api/v1"

// Client issues authenticated requests against the Tradervue API. All
// requests carry basic auth, a caller-identifying User-Agent and, when a
// target user is set, the impersonation header organization admins use to
// act on behalf of another account.
type Client struct {
	baseURL    string
	username   string
	password   string
	userAgent  string
	targetUser string
	verbose    bool
	log        *log.Logger
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different server, e.g. an
// organization installation or a test fixture.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTargetUser sets the user id to issue requests on behalf of.
// Requires the organization admin feature.
func WithTargetUser(id string) Option {
	return func(c *Client) { c.targetUser = id }
}

// WithVerbose enables full request/response logging at debug level.
// Behavior is otherwise unchanged.
func WithVerbose(v bool) Option {
	return func(c *Client) { c.verbose = v }
}

// WithLogger routes client logging to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Tradervue API client. The user agent should identify
// the application and a contact, e.g. "MyApp (you@example.com)".
func NewClient(username, password, userAgent string, opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		username:  username,
		password:  password,
		userAgent: userAgent,
		log:       log.StandardLogger(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response is a decoded-enough HTTP result: 2xx only, errors are returned
// as *APIError or *RequestError by do.
type response struct {
	status int
	body   []byte
	header http.Header
}

// do issues one request and maps the outcome. No retries happen here:
// pagination and import submission need different retry policies, so the
// callers own them.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (*response, error) {
	apiURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var body io.Reader
	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.targetUser != "" {
		req.Header.Set("Tradervue-UserId", c.targetUser)
	}

	if c.verbose {
		c.log.Debugf("request:  %s %s", method, apiURL)
		c.log.Debugf("          user    %s", c.username)
		c.log.Debugf("          payload %s", string(encoded))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: method, URL: apiURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: method, URL: apiURL, Err: err}
	}

	if c.verbose {
		c.log.Debugf("response: %s %s", resp.Status, apiURL)
		c.log.Debugf("          body    %s", string(respBody))
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			URL:     apiURL,
			Body:    string(respBody),
			Message: serverMessage(respBody),
		}
		if resp.StatusCode == http.StatusForbidden && c.targetUser != "" {
			c.log.Warnf("no permission to issue API calls on behalf of user %s", c.targetUser)
		}
		return nil, apiErr
	}

	return &response{
		status: resp.StatusCode,
		body:   respBody,
		header: resp.Header,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) (*response, error) {
	return c.do(ctx, http.MethodPost, path, nil, payload)
}

func (c *Client) put(ctx context.Context, path string, payload any) (*response, error) {
	return c.do(ctx, http.MethodPut, path, nil, payload)
}

func (c *Client) delete(ctx context.Context, path string) (*response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
