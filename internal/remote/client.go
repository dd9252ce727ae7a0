// Package remote talks to the record service over HTTP. Client satisfies both
// store.Records and images.ObjectStore so the inventory engine can run against
// a service in another process.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/ratelimit"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// DefaultTimeout bounds a single request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	// Rate and Burst feed the outbound limiter. A zero Rate disables it.
	Rate  float64
	Burst int
}

// Client is an HTTP client for the record service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.KeyedRateLimiter
	logger      *slog.Logger
}

var (
	_ store.Records       = (*Client)(nil)
	_ images.ObjectStore = (*Client)(nil)
)

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts Options, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid record service url %q", baseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.rateLimiter = ratelimit.New(opts.Rate, burst)
	}
	return c, nil
}

// Close stops the rate limiter's background sweep.
func (c *Client) Close() {
	if c.rateLimiter != nil {
		c.rateLimiter.Stop()
	}
}

// wait blocks until the rate limiter allows a request to this service.
func (c *Client) wait(ctx context.Context) error {
	if c.rateLimiter == nil {
		return nil
	}
	return c.rateLimiter.Wait(ctx, c.baseURL)
}

// envelope mirrors the service's response wrapper with data left undecoded.
type envelope struct {
	V       int             `json:"v"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

// do sends a request and decodes the envelope's data into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	if err := c.wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return store.ErrUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("record service request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return store.ErrUnavailable.WithCause(fmt.Errorf("read response: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return store.FromStatus(resp.StatusCode, "")
		}
		return fmt.Errorf("parse response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		status := resp.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return store.FromStatus(status, env.Message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func recordsPath(table string, rest ...string) string {
	p := "/api/v1/records/" + url.PathEscape(table)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// Select returns rows of table matching filter.
func (c *Client) Select(ctx context.Context, table string, filter store.Filter) ([]store.Row, error) {
	var out struct {
		Rows []store.Row `json:"rows"`
	}
	in := map[string]any{}
	if len(filter) > 0 {
		in["filter"] = filter
	}
	if err := c.doJSON(ctx, http.MethodPost, recordsPath(table, "query"), in, &out); err != nil {
		return nil, err
	}
	if out.Rows == nil {
		out.Rows = []store.Row{}
	}
	return out.Rows, nil
}

// Insert stores row and returns it as the service saved it.
func (c *Client) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	var out struct {
		Row store.Row `json:"row"`
	}
	if err := c.doJSON(ctx, http.MethodPost, recordsPath(table), map[string]any{"row": row}, &out); err != nil {
		return nil, err
	}
	return out.Row, nil
}

// Update applies patch to the row with the given id.
func (c *Client) Update(ctx context.Context, table, id string, patch store.Row) (store.Row, error) {
	var out struct {
		Row store.Row `json:"row"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, recordsPath(table, id), map[string]any{"patch": patch}, &out); err != nil {
		return nil, err
	}
	return out.Row, nil
}

// Delete removes the row with the given id.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	return c.do(ctx, http.MethodDelete, recordsPath(table, id), nil, "", nil)
}

// Put uploads an object under key.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	clean, err := images.CleanKey(key)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.do(ctx, http.MethodPut, "/objects/"+clean, bytes.NewReader(data), contentType, nil)
}

// PublicURL returns where the service serves key. No request is made.
func (c *Client) PublicURL(key string) string {
	return images.PublicURL(c.baseURL, key)
}
