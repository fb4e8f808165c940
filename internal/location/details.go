// internal/location/details.go
package location

import (
	"context"
	"net/url"
	"strings"
	"time"

	"cabs-workers/internal/common/httputil"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
)

// DetailsFetcher expands a place identifier into a full location record.
// A nil Location with nil error means the place could not be resolved;
// the cause is logged here and never surfaced.
type DetailsFetcher interface {
	Fetch(ctx context.Context, identifier string) (*Location, error)
}

// DetailsConfig configures the location detail client.
type DetailsConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DetailsClient calls the location detail API.
type DetailsClient struct {
	config DetailsConfig
	http   *httputil.Client
	logger logger.Logger
}

func NewDetailsClient(cfg DetailsConfig, log logger.Logger) *DetailsClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &DetailsClient{
		config: cfg,
		http:   httputil.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"component": "location-details"}),
	}
}

func (c *DetailsClient) Fetch(ctx context.Context, identifier string) (*Location, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("placeId", identifier)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	var loc Location
	err := c.http.GetJSON(ctx, c.config.BaseURL, params, &loc)
	metrics.UpstreamRequestDuration.WithLabelValues("location_details").Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("detail lookup failed", map[string]interface{}{
			"placeId": identifier,
			"error":   err.Error(),
			"timeout": httputil.IsTimeout(err),
		})
		return nil, nil
	}

	// Some payloads omit the identifier; the caller asked for a specific
	// place, so keep that one.
	if loc.Identifier == "" {
		loc.Identifier = identifier
	}
	return &loc, nil
}
