// internal/api/client.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/driftworks/swaps/pkg/core"
)

// maxFetchAttempts bounds transport-level retries inside a single logical
// fetch. The catalog is only ever loaded once per session; these retries
// cover transient network hiccups, not feature-level re-loading.
const maxFetchAttempts = 3

// CatalogPayload is the remote catalog document: the swappable engines and
// the per-model eligibility rows.
type CatalogPayload struct {
	Engines     []core.EngineSpec     `json:"engines"`
	Eligibility []core.EligibilityRow `json:"eligibility"`
}

// entitlementResponse is the entitlement service's reply.
type entitlementResponse struct {
	Granted bool `json:"granted"`
}

// Client handles communication with the swap service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the swap service is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// FetchCatalog downloads the engine catalog and eligibility rows.
// Transient failures are retried with exponential backoff up to
// maxFetchAttempts; after that the error is final for the session.
func (c *Client) FetchCatalog(ctx context.Context) (*CatalogPayload, error) {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.MaxInterval = 5 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			sleep := backoffCfg.NextBackOff()
			if sleep == backoff.Stop {
				break
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sleep):
			}
		}

		payload, err := c.fetchCatalogOnce(ctx)
		if err == nil {
			return payload, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("catalog fetch failed after %d attempts: %w", maxFetchAttempts, lastErr)
}

func (c *Client) fetchCatalogOnce(ctx context.Context) (*CatalogPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/swaps/catalog", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var payload CatalogPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &payload, nil
}

// CheckEntitlement asks the entitlement service whether the feature is
// granted for this player. A definitive "no" and a transport failure both
// report granted=false; the error distinguishes them for logging.
func (c *Client) CheckEntitlement(ctx context.Context, featureKey string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/entitlements/%s", c.baseURL, featureKey), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("entitlement request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body entitlementResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, fmt.Errorf("failed to decode entitlement: %w", err)
		}
		return body.Granted, nil
	case http.StatusForbidden, http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("entitlement returned status %d", resp.StatusCode)
	}
}
