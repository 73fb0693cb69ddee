package lms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrTransport is wrapped by every failure to reach the server or to make
// sense of its answer.
var ErrTransport = errors.New("lms transport failure")

// Invoker sends one slim.request command. An empty playerID addresses the
// server itself.
type Invoker interface {
	Invoke(ctx context.Context, playerID string, args ...any) (map[string]any, error)
}

// Options configures a Client.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string

	// Timeout bounds a single request. Defaults to 10s.
	Timeout time.Duration

	// RequestsPerSecond caps outgoing requests. Zero disables the limiter.
	RequestsPerSecond float64
}

// Client talks to the JSON-RPC endpoint of a Lyrion Media Server.
type Client struct {
	url        string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type rpcRequest struct {
	ID     int    `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a client for the server described by opts.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		url:        fmt.Sprintf("http://%s:%d/jsonrpc.js", opts.Host, opts.Port),
		username:   opts.Username,
		password:   opts.Password,
		httpClient: &http.Client{Timeout: timeout},
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// URL returns the JSON-RPC endpoint.
func (c *Client) URL() string {
	return c.url
}

// Invoke sends args to playerID and returns the result object.
func (c *Client) Invoke(ctx context.Context, playerID string, args ...any) (map[string]any, error) {
	if args == nil {
		args = []any{}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrTransport, err)
		}
	}

	body, err := json.Marshal(rpcRequest{
		ID:     1,
		Method: "slim.request",
		Params: []any{playerID, args},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected HTTP status %s", ErrTransport, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%w: server error %d: %s", ErrTransport, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	// Commands without output answer with an empty or absent result; the
	// server object itself stands in, as the web UI does.
	result := map[string]any{}
	if len(rpcResp.Result) > 0 && string(rpcResp.Result) != "null" {
		if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
			return nil, fmt.Errorf("%w: decode result: %v", ErrTransport, err)
		}
	} else if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}

	log.Debug().
		Str("player", playerID).
		Interface("args", args).
		Msg("slim.request")

	return result, nil
}
