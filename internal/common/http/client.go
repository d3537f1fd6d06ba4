// internal/common/http/client.go

// Package http wraps net/http with the timeout and retry behavior shared by
// outbound calls to external collaborators (the occupational taxonomy API).
package http

import (
	"context"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 2,
		retryDelay: 500 * time.Millisecond,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithContext executes the request under ctx. Bodyless GET requests are
// retried on transport errors and 5xx responses; everything else gets a
// single attempt.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	attempts := 1
	if req.Method == http.MethodGet && req.Body == nil {
		attempts += c.maxRetries
	}

	var (
		resp *http.Response
		err  error
	)
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i)):
			}
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if i < attempts-1 {
			resp.Body.Close()
		}
	}
	return resp, err
}
