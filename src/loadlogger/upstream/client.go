package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Independent endpoints used to tell "upstream is down" apart from "our
// network is down".
const (
	probePrimary  = "https://www.google.com/generate_204"
	probeFallback = "https://www.apple.com/library/test/success.html"
)

// Client talks to the utility's family load API.
type Client struct {
	baseURL string
	http    *http.Client
	probe   *http.Client
	debug   bool
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		probe:   &http.Client{Timeout: 5 * time.Second},
	}
}

// SetDebug enables request-level logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	url := c.baseURL + endpoint
	if c.debug {
		log.Printf("upstream: GET %s", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream: GET %s: status %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CheckConnectivity reports whether the upstream API answers at all.
func (c *Client) CheckConnectivity(ctx context.Context) bool {
	var raw json.RawMessage
	if err := c.get(ctx, "/area", &raw); err != nil {
		log.Printf("upstream: connectivity check failed: %v", err)
		return false
	}
	return true
}

// CheckInternet probes known-reliable endpoints outside the upstream vendor.
func (c *Client) CheckInternet(ctx context.Context) bool {
	if code, err := c.probeStatus(ctx, probePrimary); err == nil && code == http.StatusNoContent {
		return true
	}
	code, err := c.probeStatus(ctx, probeFallback)
	return err == nil && code == http.StatusOK
}

func (c *Client) probeStatus(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.probe.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Cooperatives fetches the authoritative cooperative list.
func (c *Client) Cooperatives(ctx context.Context) ([]Cooperative, error) {
	var coops []Cooperative
	if err := c.get(ctx, "/area", &coops); err != nil {
		return nil, err
	}
	return coops, nil
}

// AreaGrid fetches the chart data (actual + forecast series) for one area.
func (c *Client) AreaGrid(ctx context.Context, areaID uint32) (*AreaGridResponse, error) {
	var resp AreaGridResponse
	if err := c.get(ctx, fmt.Sprintf("/areagrid/%d", areaID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AreaSubstations fetches the current substation table for one area.
func (c *Client) AreaSubstations(ctx context.Context, areaID uint32) (*AreaLoadTableResponse, error) {
	var resp AreaLoadTableResponse
	if err := c.get(ctx, fmt.Sprintf("/arealoadtable/%d", areaID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
