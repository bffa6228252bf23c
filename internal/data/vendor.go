package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"forecast-compare/internal/model"
)

// VendorClient fetches raw fundamentals and actual production from the
// market-data vendor's HTTP API.
type VendorClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	// Cache is optional; nil disables response caching.
	Cache *ResponseCache
}

// NewVendorClient creates a new vendor API client.
func NewVendorClient(apiKey string, baseURL string) *VendorClient {
	return &VendorClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FundamentalsParams selects forecast runs by asset and issue hour.
type FundamentalsParams struct {
	From          time.Time
	To            time.Time
	AssetKeys     []string // e.g. "dk1", "dk1_land", "dk1_sea"
	ForecastHours []int    // issue hours to include, e.g. 11
}

// ActualsParams selects measured production by bidding zone.
type ActualsParams struct {
	From  time.Time
	To    time.Time
	Zones []string // e.g. "DK1"
}

// VendorError represents an error from the vendor API
type VendorError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *VendorError) Error() string {
	return e.Message
}

type fundamentalsResponse struct {
	StatusCode int                 `json:"status_code"`
	Data       []model.EnforRecord `json:"data"`
}

type actualsResponse struct {
	StatusCode int               `json:"status_code"`
	Data       []model.RawActual `json:"data"`
}

// FetchFundamentals returns every forecast value issued at one of the
// requested hours for the requested assets.
func (c *VendorClient) FetchFundamentals(ctx context.Context, p FundamentalsParams) ([]model.EnforRecord, error) {
	if len(p.AssetKeys) == 0 {
		return nil, fmt.Errorf("at least one asset key is required")
	}
	if err := checkRange(p.From, p.To); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("from", p.From.Format(time.RFC3339))
	q.Set("to", p.To.Format(time.RFC3339))
	q.Set("asset_keys", strings.Join(p.AssetKeys, ","))
	if len(p.ForecastHours) > 0 {
		hours := make([]string, len(p.ForecastHours))
		for i, h := range p.ForecastHours {
			hours[i] = strconv.Itoa(h)
		}
		q.Set("forecast_hours", strings.Join(hours, ","))
	}

	var resp fundamentalsResponse
	if err := c.get(ctx, "/v1/fundamentals", q, &resp); err != nil {
		return nil, err
	}
	log.Printf("[Vendor] Success: Received %d fundamentals rows (assets=%s)", len(resp.Data), q.Get("asset_keys"))
	return resp.Data, nil
}

// FetchActualProduction returns every published revision of measured
// production for the requested zones.
func (c *VendorClient) FetchActualProduction(ctx context.Context, p ActualsParams) ([]model.RawActual, error) {
	if len(p.Zones) == 0 {
		return nil, fmt.Errorf("at least one bidding zone is required")
	}
	if err := checkRange(p.From, p.To); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("from", p.From.Format(time.RFC3339))
	q.Set("to", p.To.Format(time.RFC3339))
	q.Set("zones", strings.Join(p.Zones, ","))

	var resp actualsResponse
	if err := c.get(ctx, "/v1/actuals/production", q, &resp); err != nil {
		return nil, err
	}
	log.Printf("[Vendor] Success: Received %d actuals rows (zones=%s)", len(resp.Data), q.Get("zones"))
	return resp.Data, nil
}

func checkRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("from and to are required")
	}
	if from.After(to) {
		return fmt.Errorf("from must be before to")
	}
	return nil
}

func (c *VendorClient) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.validateAPIKey(); err != nil {
		return err
	}
	if c.BaseURL == "" {
		return fmt.Errorf("vendor base URL is required")
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.RawQuery = q.Encode()

	cacheKey := GenerateCacheKey(u.String())
	if body, found := c.Cache.Get(cacheKey); found {
		log.Printf("[Vendor] Cache hit: %s (%d bytes)", u.Path, len(body))
		return decodeBody(body, out)
	}

	log.Printf("[Vendor] Request: GET %s?%s", u.Path, u.RawQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		log.Printf("[Vendor] Request failed: %v (duration: %v)", err, duration)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[Vendor] Response: %s (duration: %v, path=%s)", resp.Status, duration, u.Path)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return &VendorError{
			StatusCode: resp.StatusCode,
			Code:       "INVALID_API_KEY",
			Message:    "Invalid API key or insufficient permissions",
		}
	case http.StatusUnauthorized:
		return &VendorError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Unauthorized: Invalid API key",
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		log.Printf("[Vendor] Error: 429 Rate Limit Exceeded - Retry after: %s (path=%s)", retryAfter, u.Path)
		return &VendorError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		log.Printf("[Vendor] Error: %s (path=%s)", resp.Status, u.Path)
		return &VendorError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := decodeBody(body, out); err != nil {
		log.Printf("[Vendor] Error decoding response: %v (path=%s)", err, u.Path)
		return err
	}
	c.Cache.Set(cacheKey, body)
	return nil
}

func decodeBody(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// validateAPIKey rejects missing or obviously truncated keys before a request
// is made.
func (c *VendorClient) validateAPIKey() error {
	if c.APIKey == "" {
		return &VendorError{
			Code:    "MISSING_API_KEY",
			Message: "API key is required",
		}
	}
	if len(strings.TrimSpace(c.APIKey)) < 10 {
		return &VendorError{
			Code:    "INVALID_API_KEY_FORMAT",
			Message: "API key appears to be invalid (too short)",
		}
	}
	return nil
}
