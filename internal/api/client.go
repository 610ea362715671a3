// Package api wraps the remote salon backend behind the narrow
// request/response contract the client core consumes. The backend protocol
// itself is not designed here: callers issue a method and a path and get a
// status code plus raw JSON back.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// maxResponseBytes caps a single API response body.
const maxResponseBytes = 4 << 20

// Response is the generic outcome of a backend call.
type Response struct {
	Status int
	Data   json.RawMessage
}

// Client issues JSON requests against the backend base URL. A nil HTTP
// client falls back to a sane default with a timeout.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     zerolog.Logger
}

// Request performs an HTTP call and returns the raw response. Network and
// encoding failures are returned as errors; non-2xx statuses are not — the
// caller decides what each status means for its domain.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	c.Log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	return &Response{Status: resp.StatusCode, Data: data}, nil
}
