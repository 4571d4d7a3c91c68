package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Suggester produces a candidate move string for a position. Implementations
// are untrusted oracles; callers must parse and legality-check every reply.
type Suggester interface {
	Suggest(ctx context.Context, position string) (string, error)
}

var ErrEmptySuggestion = errors.New("advisor returned no move")

// Client talks to the advisory HTTP service.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		defaultTimeout: 20 * time.Second,
		retryMax:       1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggest posts the position string and returns the raw reply string.
func (c *Client) Suggest(ctx context.Context, position string) (string, error) {
	var resp SuggestResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/suggest", SuggestRequest{Position: position}, &resp); err != nil {
		return "", err
	}
	move := strings.TrimSpace(resp.Move)
	if move == "" {
		return "", ErrEmptySuggestion
	}
	return move, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := c.retryMax + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		deadline := time.Now().Add(c.defaultTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			lastErr = fmt.Errorf("advisor request: %w", err)
			continue
		}
		if code := resp.StatusCode(); code != fasthttp.StatusOK {
			lastErr = fmt.Errorf("advisor status %d", code)
			continue
		}
		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode advisor response: %w", err)
			}
		}
		return nil
	}
	return lastErr
}
