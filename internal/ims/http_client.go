package ims

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// HTTPClient talks to the item-management platform over its REST API.
// The base URL is injected from config so tests can point to a local mock.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch issues GET /items?barcode=... and maps a 404 (or an explicit empty
// result) to domain.ErrItemNotFound so callers can distinguish a definitive
// miss from a transient failure.
func (c *HTTPClient) Fetch(ctx context.Context, apiKey, barcode string) (*domain.Item, error) {
	u := fmt.Sprintf("%s/items?barcode=%s", c.baseURL, url.QueryEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "apikey "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", barcode, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrItemNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch item %s: unexpected status %d", barcode, resp.StatusCode)
	}

	var item domain.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", barcode, err)
	}
	if item.Barcode == "" {
		return nil, domain.ErrItemNotFound
	}

	return &item, nil
}

// Update issues PUT /items/{barcode} with the full item record.
// There is no conditional write: the platform offers no idempotency key, so
// a redelivered event can re-apply the same correction.
func (c *HTTPClient) Update(ctx context.Context, apiKey string, item *domain.Item) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	u := fmt.Sprintf("%s/items/%s", c.baseURL, url.PathEscape(item.Barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "apikey "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update item %s: %w", item.Barcode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("update item %s: unexpected status %d", item.Barcode, resp.StatusCode)
	}
	return nil
}

// compile-time check that HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
