// ABOUTME: Client for the legacy GHL v1 contacts API authenticated with a static API key
// ABOUTME: Lists contacts page by page and reads or updates single contacts
package ghl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/harperreed/hireos/models"
)

// maxErrorBody caps how much of a failed response body is kept in an APIError.
const maxErrorBody = 2048

type LegacyClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewLegacyClient creates a v1 client. A zero timeout leaves requests unbounded
// apart from the caller's context.
func NewLegacyClient(baseURL, apiKey string, timeout time.Duration) *LegacyClient {
	return &LegacyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// ListContacts fetches one page of contacts.
func (c *LegacyClient) ListContacts(ctx context.Context, limit, offset int) ([]models.RemoteContact, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/contacts/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeContactList(resp.Body)
}

// GetContact fetches a single contact by ID.
func (c *LegacyClient) GetContact(ctx context.Context, id string) (*models.RemoteContact, error) {
	if id == "" {
		return nil, fmt.Errorf("contact id is required")
	}

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/contacts/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeContact(resp.Body)
}

// UpdateContact applies update to the contact and returns the stored result.
func (c *LegacyClient) UpdateContact(ctx context.Context, id string, update ContactUpdate) (*models.RemoteContact, error) {
	if id == "" {
		return nil, fmt.Errorf("contact id is required")
	}

	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact update: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, c.baseURL+"/contacts/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeContact(resp.Body)
}

// do sends the request and converts any non-2xx answer into an APIError.
func (c *LegacyClient) do(ctx context.Context, method, rawURL string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GHL %s %s: %w", method, rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, newAPIError(method, rawURL, resp)
	}

	return resp, nil
}

func newAPIError(method, rawURL string, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method:     method,
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
