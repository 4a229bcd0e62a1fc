package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout and the CORS origin to send.
type HTTPClient struct {
	client *http.Client
	origin string
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration, origin string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		origin: origin,
	}
}

// Do performs a request with an optional JSON body and reads the response.
func (c *HTTPClient) Do(ctx context.Context, method, url string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// expect checks the status code and decodes the body into v when v is non-nil.
func (r *response) expect(status int, v any) error {
	if r.status != status {
		return fmt.Errorf("%w: got %d want %d: %s", ErrUnexpectedStatus, r.status, status, bytes.TrimSpace(r.body))
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
