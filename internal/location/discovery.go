// internal/location/discovery.go
package location

import (
	"context"
	"net/url"
	"strings"
	"time"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/httputil"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
)

// Discoverer turns a free-text query into candidate places.
type Discoverer interface {
	Discover(ctx context.Context, query string) ([]Candidate, error)
}

// PlacesConfig configures the autocomplete client.
type PlacesConfig struct {
	BaseURL string
	APIKey  string
	Types   string
	Timeout time.Duration
}

// PlacesClient queries the place autocomplete API. Upstream faults degrade
// to an empty candidate list; only a missing API key is reported as an error.
type PlacesClient struct {
	config PlacesConfig
	http   *httputil.Client
	logger logger.Logger
}

func NewPlacesClient(cfg PlacesConfig, log logger.Logger) *PlacesClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Types == "" {
		cfg.Types = "geocode|establishment"
	}
	return &PlacesClient{
		config: cfg,
		http:   httputil.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"component": "places-autocomplete"}),
	}
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		PlaceID              string `json:"place_id"`
		Description          string `json:"description"`
		StructuredFormatting struct {
			MainText string `json:"main_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
}

func (c *PlacesClient) Discover(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if c.config.APIKey == "" {
		return nil, cerrors.NewConfigurationError("places API key is not set")
	}

	params := url.Values{}
	params.Set("input", query)
	params.Set("key", c.config.APIKey)
	params.Set("types", c.config.Types)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	var resp autocompleteResponse
	err := c.http.GetJSON(ctx, c.config.BaseURL, params, &resp)
	metrics.UpstreamRequestDuration.WithLabelValues("places_autocomplete").Observe(time.Since(start).Seconds())

	if err != nil {
		// Transient upstream faults are not the caller's problem; an empty
		// result produces the same user-facing outcome as a genuine miss.
		c.logger.Warn("autocomplete request failed", map[string]interface{}{
			"query":   query,
			"error":   err.Error(),
			"timeout": httputil.IsTimeout(err),
		})
		return nil, nil
	}

	if resp.Status != "OK" {
		if resp.Status != "ZERO_RESULTS" {
			c.logger.Warn("autocomplete returned non-OK status", map[string]interface{}{
				"query":  query,
				"status": resp.Status,
			})
		}
		return nil, nil
	}

	candidates := make([]Candidate, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		name := p.StructuredFormatting.MainText
		if name == "" {
			name = p.Description
		}
		candidates = append(candidates, Candidate{
			Identifier: p.PlaceID,
			Name:       name,
			Address:    p.Description,
		})
	}
	return candidates, nil
}
