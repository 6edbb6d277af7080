// Package bgx is the HTTP client for the remote BGX racing API. All error
// responses are normalized into *APIError at this boundary so the flows
// above never see raw backend payloads.
package bgx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 15 * time.Second

type contextKey string

const (
	languageKey contextKey = "language"
	tokenKey    contextKey = "access_token"
)

// WithLanguage attaches the resolved UI language to the context. The client
// forwards it as Accept-Language on every request.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey, lang)
}

// WithToken attaches a bearer token to the context for authenticated calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// Client talks to the BGX API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if lang, ok := ctx.Value(languageKey).(string); ok && lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	if token, ok := ctx.Value(tokenKey).(string); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{
			General: []string{"The server could not be reached. Please try again."},
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			General:    []string{"The server could not be reached. Please try again."},
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getList handles endpoints that return either a bare array or a paginated
// {"results": [...]} envelope.
func getList[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return page.Results, nil
}
