package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/apierror"
)

// TokenSource supplies the Authorization header value for outgoing requests.
// An empty string means no session is present and the header is omitted.
type TokenSource interface {
	AuthorizationHeader() string
}

// Client wraps an http.Client bound to one API base URL. It attaches the
// bearer token from the configured TokenSource and invokes the unauthorized
// hook on any 401 response, mirroring a response interceptor.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

// SetTokenSource wires the session store in after construction. The transport
// is built before any store exists, so this follows the same two-phase
// lifecycle as the stores themselves.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// SetUnauthorizedHandler registers the hook invoked on every 401 response.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) resolve(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// Do issues one request and decodes a JSON response into out when out is
// non-nil. body is JSON-encoded when non-nil. Non-2xx responses are
// normalized into *apierror.Error; no retry is ever attempted.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apierror.Normalize(err, method+" "+path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return apierror.Normalize(err, method+" "+path)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	tokens := c.tokens
	onUnauthorized := c.onUnauthorized
	c.mu.RUnlock()

	if tokens != nil {
		if header := tokens.AuthorizationHeader(); header != "" {
			req.Header.Set("Authorization", header)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("http_request_failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return apierror.Normalize(err, method+" "+path)
	}
	defer resp.Body.Close()

	c.log.Debug("http_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized && onUnauthorized != nil {
		onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierror.FromStatus(resp.StatusCode, errorMessage(resp), method+" "+path)
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.Normalize(err, method+" "+path)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apierror.Normalize(fmt.Errorf("decoding response: %w", err), method+" "+path)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error response
// body, checking the detail, message and error fields in that order.
func errorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var envelope struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	switch {
	case envelope.Detail != "":
		return envelope.Detail
	case envelope.Message != "":
		return envelope.Message
	default:
		return envelope.Error
	}
}
