package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Option configures the Client.
type Option interface {
	apply(*Client)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *Client) { c.apiKey = key })
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *Client) { c.httpClient = hc })
}

// Client is the ragfuse service client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ragfuse: base URL required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c, nil
}

// UpsertFragment creates or replaces a fragment. Returns the stored fragment
// and whether it was newly created.
func (c *Client) UpsertFragment(ctx context.Context, id string, req UpsertFragmentRequest) (Fragment, bool, error) {
	var f Fragment
	status, err := c.do(ctx, http.MethodPut, "/api/v1/fragments/"+url.PathEscape(id), req, &f)
	if err != nil {
		return Fragment{}, false, err
	}
	return f, status == http.StatusCreated, nil
}

// GetFragment fetches a fragment by ID. includeVector adds the stored
// embedding to the result.
func (c *Client) GetFragment(ctx context.Context, id string, includeVector bool) (Fragment, error) {
	path := "/api/v1/fragments/" + url.PathEscape(id)
	if includeVector {
		path += "?include_vector=true"
	}
	var f Fragment
	if _, err := c.do(ctx, http.MethodGet, path, nil, &f); err != nil {
		return Fragment{}, err
	}
	return f, nil
}

// DeleteFragment removes a fragment by ID.
func (c *Client) DeleteFragment(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/fragments/"+url.PathEscape(id), nil, nil)
	return err
}

// ListFragments returns all indexed fragments sorted by ID.
func (c *Client) ListFragments(ctx context.Context) ([]Fragment, error) {
	var resp fragmentListResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/fragments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Search runs a hybrid query and returns ranked results.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	var resp searchResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Health fetches the service health report. A degraded service returns the
// report alongside a non-nil error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthReport{}, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return HealthReport{}, fmt.Errorf("ragfuse: health request: %w", err)
	}
	defer resp.Body.Close()

	var report HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return HealthReport{}, fmt.Errorf("ragfuse: decode health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return report, fmt.Errorf("ragfuse: service %s", report.Status)
	}
	return report, nil
}

// do sends one API request and decodes the JSON response into out (when out
// is non-nil). Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var payload io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return 0, fmt.Errorf("ragfuse: encode request: %w", err)
		}
		payload = buf
	}

	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ragfuse: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, parseAPIError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("ragfuse: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("ragfuse: new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Code = "unknown"
		apiErr.Message = resp.Status
	}
	return apiErr
}
