package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultDetailsEndpoint = "https://maps.googleapis.com/maps/api/place/details/json"

// Client fetches place details from the Places web service. It exists
// for flows that only hold a place id (the widget keeps full results in
// the browser; server-side callers do not).
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   defaultDetailsEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type detailsResponse struct {
	Result PlaceResult `json:"result"`
	Status string      `json:"status"`
}

func (c *Client) Details(ctx context.Context, placeID string) (PlaceResult, error) {
	if strings.TrimSpace(placeID) == "" {
		return PlaceResult{}, fmt.Errorf("missing place id")
	}

	query := url.Values{}
	query.Set("place_id", placeID)
	query.Set("fields", "address_component,formatted_address,geometry,place_id")
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return PlaceResult{}, fmt.Errorf("places create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PlaceResult{}, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return PlaceResult{}, fmt.Errorf("places details failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PlaceResult{}, fmt.Errorf("places decode response: %w", err)
	}
	if out.Status != "OK" {
		return PlaceResult{}, fmt.Errorf("places details status %s", out.Status)
	}

	return out.Result, nil
}
