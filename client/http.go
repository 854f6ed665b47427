package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wxveio/wxve-chat/logger"
)

// DefaultEndpoint is the public chat service.
const DefaultEndpoint = "https://api.wxve.io/chat"

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 4096

// ErrNoBody is returned when a successful response carries no body to stream.
var ErrNoBody = errors.New("no body")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Client talks to the chat endpoint.
type Client struct {
	Endpoint string
	// IdleTimeout aborts a request when neither headers nor body bytes
	// arrive for this long. Zero disables it.
	IdleTimeout time.Duration
	HTTPClient  *http.Client
}

// New returns a Client for endpoint. Streams may legitimately stay open for
// minutes, so the HTTP client has no overall timeout.
func New(endpoint string) *Client {
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 0},
	}
}

// Chat posts req and returns the response body as a Stream. The caller must
// Close the stream. Errors cover everything up to and including the
// response headers: request construction, transport failures, a non-2xx
// status (*StatusError) and a missing body (ErrNoBody).
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Stream, error) {
	log := logger.Named("client")

	if req.History == nil {
		req.History = []HistoryMessage{}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	watch := newIdleWatch(c.IdleTimeout, cancel)
	release := func() {
		watch.stop()
		cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		release()
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		release()
		if watch.timedOut() {
			return nil, watch.err()
		}
		return nil, err
	}
	log.WithFields(logger.Fields{
		"status":  resp.StatusCode,
		"latency": time.Since(start).Round(time.Millisecond),
		"history": len(req.History),
	}).Debug("chat response headers")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := parseError(resp)
		resp.Body.Close()
		release()
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		release()
		return nil, ErrNoBody
	}
	watch.touch()
	return newStream(resp.Body, cancel, watch), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		detail := apiErr.Error
		if apiErr.Details != "" {
			detail += " (" + apiErr.Details + ")"
		}
		return &StatusError{Code: resp.StatusCode, Detail: detail}
	}
	return &StatusError{Code: resp.StatusCode}
}
