// Package api is the typed HTTP client for the Threadly REST backend. It
// stays free of UI concerns: unauthorized responses surface as a distinct
// error kind plus an optional hook that the session layer subscribes to.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	threadly "github.com/goliatone/threadly-client"
)

const defaultTimeout = 10 * time.Second

// Config holds client construction options.
type Config struct {
	// BaseURL is the API root, e.g. "https://host/api".
	BaseURL string
	// TokenSource supplies the bearer token per request; empty means no
	// Authorization header. Usually SessionManager.Token.
	TokenSource func() string

	HTTPClient *http.Client
	Logger     threadly.Logger
}

// Client talks to the Threadly backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    func() string
	onUnauthorized func()
	logger         threadly.Logger
}

// New creates a Threadly API client.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	tokenSource := cfg.TokenSource
	if tokenSource == nil {
		tokenSource = func() string { return "" }
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  client,
		tokenSource: tokenSource,
		logger:      logger,
	}
}

// SetUnauthorizedHandler registers the hook fired on any 401 response, before
// ErrUnauthorized is returned to the caller. The session manager wires its
// forced-logout reaction here after construction, since the manager itself
// needs the client for its auth operations.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do runs one request. Responses: 401 fires the unauthorized hook and returns
// ErrUnauthorized; 204 returns nil; other non-2xx become structured errors
// carrying the response body as detail. Pass *string as out to capture a raw
// body, anything else is decoded as JSON.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	if token := c.tokenSource(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "threadly request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		c.logger.Debug("unauthorized response from %s %s", method, path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return threadly.ErrUnauthorized
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apiError(method, path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}

	if raw, ok := out.(*string); ok {
		*raw = string(data)
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to decode response")
	}

	return nil
}

func apiError(method, path string, status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = fmt.Sprintf("HTTP %d", status)
	}

	return errors.New(detail, errors.CategoryOperation).WithMetadata(map[string]any{
		"status": status,
		"method": method,
		"path":   path,
	})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
