package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/integration"
)

const httpTimeout = 10 * time.Second

// Client is an HTTP client whose calls are reported through a
// monitoring registry. It behaves like a plain net/http client with
// default headers, status classification, and retryable 5xx errors;
// the instrumentation lives entirely in the wrapped transport.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client whose transport is wrapped by reg.
// Headers are applied to all requests; pass nil if none are needed.
// A nil registry produces an uninstrumented client, which is useful
// for comparing behavior in tests.
func NewClient(reg *integration.Registry, headers map[string]string) *Client {
	transport := http.DefaultTransport
	if reg != nil {
		transport = reg.WrapTransport(nil)
	}
	return &Client{
		http: &http.Client{
			Timeout:   httpTimeout,
			Transport: transport,
		},
		headers: headers,
	}
}

// Get performs an HTTP GET and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// GetText performs an HTTP GET and returns the response body as a
// string. Useful for non-JSON endpoints.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

// GetWithHeaders performs an HTTP GET with additional headers merged
// with defaults. Request-specific headers override client defaults for
// the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request %s", url))
	}

	if err := CheckStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// CheckStatus classifies an HTTP status code: 200 is success, 404 maps
// to NOT_FOUND, 5xx to a retryable network error, and anything else to
// a terminal network error.
func CheckStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found")
	case code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "status %d", code))
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d", code)
	}
}
