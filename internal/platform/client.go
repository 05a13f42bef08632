// Package platform talks to the delivery marketplaces that push orders in.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client posts order acceptances back to a marketplace's callback API.
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

// AcceptOrder tells the platform the order was taken into the kitchen. A
// non-2xx response is an error; the caller owns retry and backoff.
func (c *Client) AcceptOrder(ctx context.Context, platform, externalOrderID string) error {
	body, err := json.Marshal(map[string]string{
		"external_order_id": externalOrderID,
		"status":            "accepted",
	})
	if err != nil {
		return fmt.Errorf("marshal acceptance: %w", err)
	}

	url := fmt.Sprintf("%s/platforms/%s/orders/%s/accept", c.baseURL, platform, externalOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build acceptance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post acceptance: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("platform %s answered %d for %s", platform, resp.StatusCode, externalOrderID)
	}
	return nil
}
