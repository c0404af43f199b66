package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GateClient implements hiring.CompanyGate against the billing backend,
// which knows each company's subscription plan and remaining quota.
type GateClient struct {
	baseURL string
	http    *http.Client
}

// NewGateClient returns a client for the billing backend at baseURL.
func NewGateClient(baseURL string) *GateClient {
	return &GateClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// CanPerformAction asks whether the company's plan allows the action.
func (c *GateClient) CanPerformAction(ctx context.Context, companyID, action string) (bool, error) {
	endpoint := fmt.Sprintf("%s/companies/%s/can-perform?action=%s",
		c.baseURL, url.PathEscape(companyID), url.QueryEscape(action))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build gate request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("company gate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("company gate returned %d", resp.StatusCode)
	}
	var out struct {
		Allowed bool `json:"allowed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode gate response: %w", err)
	}
	return out.Allowed, nil
}
