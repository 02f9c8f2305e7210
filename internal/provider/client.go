package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the HTTP implementation of MetricsProvider. It calls the keyword
// metrics API's suggestions endpoint with an API key header and decodes the
// JSON response.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a metrics API client. An empty API key is a
// configuration error surfaced at startup by config.Validate, not here.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Keywords []RawCandidate `json:"keywords"`
	Status   string         `json:"status"`
	Message  string         `json:"message"`
}

// Lookup fetches up to limit keyword suggestions for the seed phrase.
// Network failures, 429 and 5xx responses are transient; 4xx responses are
// fatal (most commonly bad credentials).
func (c *Client) Lookup(ctx context.Context, seed string, limit int) ([]RawCandidate, error) {
	endpoint := fmt.Sprintf("%s/v1/keywords/suggestions?%s", c.baseURL, url.Values{
		"seed":  {seed},
		"limit": {strconv.Itoa(limit)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFatal, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFatal, resp.StatusCode, body)
	}

	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransient, err)
	}
	if decoded.Status != "" && decoded.Status != "ok" {
		return nil, fmt.Errorf("%w: provider status %q: %s", ErrTransient, decoded.Status, decoded.Message)
	}

	if len(decoded.Keywords) > limit {
		decoded.Keywords = decoded.Keywords[:limit]
	}
	return decoded.Keywords, nil
}
