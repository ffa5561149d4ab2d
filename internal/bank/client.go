// Package bank provides an HTTP client for the upstream banking API.
package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Scope selects the customer or the enterprise half of the upstream API.
type Scope string

const (
	ScopeCustomer   Scope = "customer"
	ScopeEnterprise Scope = "enterprise"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeCustomer || s == ScopeEnterprise
}

func (s Scope) prefix() string {
	if s == ScopeEnterprise {
		return "/enterprise"
	}
	return ""
}

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 10 << 20

// Client talks to the upstream banking API. Responses are passed through
// undecoded.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new banking API client.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// GetAccounts lists accounts. Extra query parameters are forwarded.
func (c *Client) GetAccounts(ctx context.Context, scope Scope, params url.Values) (json.RawMessage, error) {
	return c.get(ctx, scope.prefix()+"/accounts", params)
}

// GetAccount fetches one account by its upstream id.
func (c *Client) GetAccount(ctx context.Context, scope Scope, accountID string) (json.RawMessage, error) {
	return c.get(ctx, scope.prefix()+"/accounts/"+url.PathEscape(accountID), nil)
}

// GetBills lists bills.
func (c *Client) GetBills(ctx context.Context, scope Scope) (json.RawMessage, error) {
	return c.get(ctx, scope.prefix()+"/bills", nil)
}

// get performs a GET with the API key as the key query parameter. Errors name
// the path only, never the full URL, so the key stays out of logs.
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	query := url.Values{}
	for k, vs := range params {
		if k == "key" {
			continue
		}
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", path, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetching %s: response is not JSON", path)
	}
	return json.RawMessage(body), nil
}

// redact drops the request URL from transport errors, which would otherwise
// carry the API key.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
