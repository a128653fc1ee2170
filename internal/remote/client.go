// Package remote implements the HTTP client for the Till backend: per-entity
// create/update/delete/list plus the session endpoint, with every failure
// classified into a small error taxonomy the sync engine can branch on.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond bounds outbound gateway traffic. Sync batches are
// sequential anyway; the limiter only matters when several commands run
// back to back.
const DefaultRequestsPerSecond = 10

// Gateway is the surface the sync engine consumes. *Client implements it;
// tests substitute an in-memory fake.
type Gateway interface {
	Create(ctx context.Context, entity string, payload interface{}) (json.RawMessage, error)
	Update(ctx context.Context, entity, id string, payload interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, entity, id string) error
	Get(ctx context.Context, entity, id string) (json.RawMessage, error)
	List(ctx context.Context, entity, tenantID string) ([]json.RawMessage, error)
	FindByNaturalKey(ctx context.Context, entity, field, value string) (json.RawMessage, error)
	CurrentSession(ctx context.Context) (*Session, error)
}

// Client is the HTTP gateway client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit overrides the outbound request rate.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a gateway client for the given backend base URL.
func NewClient(baseURL, apiKey string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		log:     log.Named("remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listResponse is one page of a paginated listing.
type listResponse struct {
	Items     []json.RawMessage `json:"items"`
	NextToken string            `json:"next_token,omitempty"`
}

// errorResponse is the backend's error body.
type errorResponse struct {
	Message string `json:"message"`
}

// Create posts a new record and returns the backend's copy, id included.
func (c *Client) Create(ctx context.Context, entity string, payload interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/v1/"+entity, nil, payload)
}

// Update replaces a remote record with the full current field set.
func (c *Client) Update(ctx context.Context, entity, id string, payload interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, "/v1/"+entity+"/"+url.PathEscape(id), nil, payload)
}

// Delete removes a remote record.
func (c *Client) Delete(ctx context.Context, entity, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/"+entity+"/"+url.PathEscape(id), nil, nil)
	return err
}

// Get fetches one remote record by backend id.
func (c *Client) Get(ctx context.Context, entity, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/"+entity+"/"+url.PathEscape(id), nil, nil)
}

// List fetches the full tenant-scoped record set, following pagination until
// the backend stops returning a next token.
func (c *Client) List(ctx context.Context, entity, tenantID string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	token := ""

	for {
		query := url.Values{"tenant_id": {tenantID}}
		if token != "" {
			query.Set("next_token", token)
		}

		raw, err := c.do(ctx, http.MethodGet, "/v1/"+entity, query, nil)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("decode list page: %v", err)}
		}

		items = append(items, page.Items...)
		if page.NextToken == "" {
			return items, nil
		}
		token = page.NextToken
	}
}

// FindByNaturalKey looks a record up by its domain-unique field, e.g.
// sku=SHIRT-01. Returns a not-found gateway error when no record matches.
func (c *Client) FindByNaturalKey(ctx context.Context, entity, field, value string) (json.RawMessage, error) {
	query := url.Values{field: {value}}
	raw, err := c.do(ctx, http.MethodGet, "/v1/"+entity, query, nil)
	if err != nil {
		return nil, err
	}

	var page listResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("decode lookup: %v", err)}
	}
	if len(page.Items) == 0 {
		return nil, &Error{
			Kind:       KindNotFound,
			Message:    fmt.Sprintf("%s with %s=%s", entity, field, value),
			StatusCode: http.StatusNotFound,
		}
	}
	return page.Items[0], nil
}

// CurrentSession resolves the authenticated device's session, including the
// tenant id all scoped downloads require.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/session", nil, nil)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("decode session: %v", err)}
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error()}
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("encode payload: %v", err)}
		}
		body = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode >= 400 {
		msg := http.StatusText(resp.StatusCode)
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			msg = er.Message
		}
		c.log.Debug("gateway error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &Error{Kind: classify(resp.StatusCode), Message: msg, StatusCode: resp.StatusCode}
	}

	return raw, nil
}
