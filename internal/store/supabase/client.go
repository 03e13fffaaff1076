// Package supabase implements store.Client against a Supabase PostgREST endpoint.
package supabase

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/store"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout = 30 * time.Second

	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

var errResponseTooLarge = errors.New("response body exceeds limit")

// Config holds Supabase connection settings.
type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// Client wraps the Supabase REST API.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

var _ store.Client = (*Client)(nil)

// NewClient creates a new Supabase client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("SUPABASE_URL must be an absolute URL")
	}
	if parsed.User != nil {
		return nil, fmt.Errorf("SUPABASE_URL must not include user info")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		cloned := base.Clone()
		if cloned.TLSClientConfig != nil {
			cloned.TLSClientConfig = cloned.TLSClientConfig.Clone()
			if cloned.TLSClientConfig.MinVersion < tls.VersionTLS12 {
				cloned.TLSClientConfig.MinVersion = tls.VersionTLS12
			}
		} else {
			cloned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transport = cloned
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// Query implements store.Client.
func (c *Client) Query(ctx context.Context, table string, filter store.Filter, order store.Order) ([]json.RawMessage, error) {
	query := filterValues(filter)
	query.Set("select", "*")
	if order.Column != "" {
		dir := "asc"
		if order.Descending {
			dir = "desc"
		}
		query.Set("order", order.Column+"."+dir)
	}

	body, err := c.request(ctx, http.MethodGet, table, nil, query)
	if err != nil {
		return nil, wrap("query", table, err)
	}
	rows, err := splitRows(body)
	if err != nil {
		return nil, wrap("query", table, err)
	}
	return rows, nil
}

// Insert implements store.Client.
func (c *Client) Insert(ctx context.Context, table string, record any) (json.RawMessage, error) {
	body, err := c.request(ctx, http.MethodPost, table, record, nil)
	if err != nil {
		return nil, wrap("insert", table, err)
	}
	rows, err := splitRows(body)
	if err != nil {
		return nil, wrap("insert", table, err)
	}
	if len(rows) == 0 {
		return nil, &store.Error{Op: "insert", Table: table, Message: "no row returned"}
	}
	return rows[0], nil
}

// Delete implements store.Client.
func (c *Client) Delete(ctx context.Context, table string, filter store.Filter) error {
	if len(filter) == 0 {
		return &store.Error{Op: "delete", Table: table, Message: "filter required"}
	}
	if _, err := c.request(ctx, http.MethodDelete, table, nil, filterValues(filter)); err != nil {
		return wrap("delete", table, err)
	}
	return nil
}

// Update implements store.Client.
func (c *Client) Update(ctx context.Context, table string, filter store.Filter, patch any) ([]json.RawMessage, error) {
	if len(filter) == 0 {
		return nil, &store.Error{Op: "update", Table: table, Message: "filter required"}
	}
	body, err := c.request(ctx, http.MethodPatch, table, patch, filterValues(filter))
	if err != nil {
		return nil, wrap("update", table, err)
	}
	rows, err := splitRows(body)
	if err != nil {
		return nil, wrap("update", table, err)
	}
	return rows, nil
}

// apiError is a non-2xx PostgREST response.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("supabase API error %d: %s", e.status, e.message)
}

// request makes an HTTP request to the Supabase REST API.
func (c *Client) request(ctx context.Context, method, table string, body any, query url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(table))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, truncated, readErr := readAllWithLimit(resp.Body, maxErrorBodyBytes)
		if readErr != nil {
			return nil, fmt.Errorf("read error response: %w", readErr)
		}
		return nil, &apiError{status: resp.StatusCode, message: errorMessage(respBody, truncated)}
	}

	respBody, truncated, err := readAllWithLimit(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if truncated {
		return nil, errResponseTooLarge
	}
	return respBody, nil
}

func filterValues(filter store.Filter) url.Values {
	values := url.Values{}
	for _, cond := range filter {
		values.Add(cond.Column, "eq."+cond.Value)
	}
	return values
}

// splitRows splits a PostgREST JSON array into its row objects. An empty
// body, as returned for deletes without representation, yields no rows.
func splitRows(body []byte) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}

	result := gjson.ParseBytes(body)
	if result.IsObject() {
		return []json.RawMessage{json.RawMessage(result.Raw)}, nil
	}
	if !result.IsArray() {
		return nil, fmt.Errorf("unexpected response: %s", result.Type)
	}

	items := result.Array()
	rows := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		rows = append(rows, json.RawMessage(item.Raw))
	}
	return rows, nil
}

// errorMessage prefers the PostgREST "message" and "details" fields over the raw body.
func errorMessage(body []byte, truncated bool) string {
	if gjson.ValidBytes(body) {
		fields := gjson.GetManyBytes(body, "message", "details", "hint")
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			if s := strings.TrimSpace(f.String()); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ": ")
		}
	}

	msg := strings.TrimSpace(string(body))
	if truncated {
		msg += "...(truncated)"
	}
	return msg
}

func readAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

func wrap(op, table string, err error) error {
	storeErr := &store.Error{Op: op, Table: table}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		storeErr.Status = apiErr.status
		storeErr.Message = apiErr.message
		return storeErr
	}
	storeErr.Cause = err
	return storeErr
}
