// Package onet fetches occupational skill profiles from the O*NET Web
// Services API. The client is the external taxonomy collaborator of the
// benchmark resolver; an absent occupation is a valid "nothing to resolve"
// outcome, not an error.
package onet

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"time"

	"assessment-workers/internal/common/http"
	"assessment-workers/internal/common/logger"
)

// Benchmark is one skill benchmark of an occupational profile.
type Benchmark struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// OccupationProfile is the skill profile of one SOC occupation code.
type OccupationProfile struct {
	SOCCode    string      `json:"code"`
	Title      string      `json:"title"`
	Benchmarks []Benchmark `json:"skills"`
}

// Client calls the O*NET Web Services occupation endpoints.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   logger.Logger
}

type ClientConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		http:     http.NewClient(cfg.Timeout),
		logger:   log.WithFields(map[string]interface{}{"component": "onet-client"}),
	}
}

// GetOccupationProfile fetches the skill profile for a SOC code. A 404 from
// the taxonomy service returns (nil, nil).
func (c *Client) GetOccupationProfile(ctx context.Context, socCode string) (*OccupationProfile, error) {
	url := fmt.Sprintf("%s/online/occupations/%s/summary/skills", c.baseURL, socCode)
	req, err := nethttp.NewRequest(nethttp.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build taxonomy request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("taxonomy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == nethttp.StatusNotFound {
		c.logger.Info("no occupational profile for code", map[string]interface{}{
			"socCode": socCode,
		})
		return nil, nil
	}
	if resp.StatusCode != nethttp.StatusOK {
		return nil, fmt.Errorf("taxonomy request returned status %d", resp.StatusCode)
	}

	var profile OccupationProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode taxonomy response: %w", err)
	}
	if profile.SOCCode == "" {
		profile.SOCCode = socCode
	}
	return &profile, nil
}
