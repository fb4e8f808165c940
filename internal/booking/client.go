// internal/booking/client.go
package booking

import (
	"context"
	"time"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/httputil"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
	"cabs-workers/internal/location"
)

// ClientConfig configures the cab backend client.
type ClientConfig struct {
	SearchURL string
	HoldURL   string
	Timeout   time.Duration
}

// Client calls the cab Search and Hold APIs. Upstream details are logged;
// callers only ever see the generic StandardError messages.
type Client struct {
	config ClientConfig
	http   *httputil.Client
	logger logger.Logger
}

func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		config: cfg,
		http:   httputil.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"component": "cabs-client"}),
	}
}

// Cab is one bookable option from a search response.
type Cab struct {
	CabID    string  `json:"cabId"`
	Category string  `json:"category"`
	Model    string  `json:"model"`
	Fare     float64 `json:"fare"`
	Currency string  `json:"currency"`
	Seats    int     `json:"seats,omitempty"`
}

// SearchResult is the decoded Search API response.
type SearchResult struct {
	SearchID            string  `json:"searchId"`
	TotalDistanceKm     float64 `json:"totalDistanceKm"`
	TotalDurationMin    float64 `json:"totalDurationMin"`
	CabAvailabilityTime string  `json:"cabAvailabilityTime,omitempty"`
	Cabs                []Cab   `json:"cabs"`
}

// HoldResult is the decoded Hold API response.
type HoldResult struct {
	BookingID  string `json:"bookingId"`
	PaymentURL string `json:"paymentUrl"`
}

// Passenger is the traveller detail block sent on hold.
type Passenger struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Mobile      string `json:"mobile"`
	CountryCode string `json:"countryCode"`
	Email       string `json:"email"`
}

// Search posts the resolved trip to the Search API. Each location record is
// sent in full with a plain-text echo of its address merged in, under the
// keys the backend reads (sourceText/destinationText).
func (c *Client) Search(ctx context.Context, source, destination *location.Location, pickupTimeMs int64) (*SearchResult, error) {
	src := source.AsMap()
	src["sourceText"] = source.Address
	dst := destination.AsMap()
	dst["destinationText"] = destination.Address

	payload := map[string]interface{}{
		"source":      src,
		"destination": dst,
		"pickupTime":  pickupTimeMs,
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	var result SearchResult
	err := c.http.PostJSON(ctx, c.config.SearchURL, payload, &result)
	metrics.UpstreamRequestDuration.WithLabelValues("cabs_search").Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Error("search request failed", map[string]interface{}{
			"error":   err.Error(),
			"timeout": httputil.IsTimeout(err),
		})
		if httputil.IsTimeout(err) {
			return nil, cerrors.NewSearchAPITimeoutError()
		}
		return nil, cerrors.NewSearchAPIError()
	}

	return &result, nil
}

// Hold reserves one cab from a previous search.
func (c *Client) Hold(ctx context.Context, searchID string, cab *Cab, passenger *Passenger) (*HoldResult, error) {
	payload := map[string]interface{}{
		"searchId":  searchID,
		"cabId":     cab.CabID,
		"category":  cab.Category,
		"passenger": passenger,
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	var result HoldResult
	err := c.http.PostJSON(ctx, c.config.HoldURL, payload, &result)
	metrics.UpstreamRequestDuration.WithLabelValues("cabs_hold").Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Error("hold request failed", map[string]interface{}{
			"searchId": searchID,
			"cabId":    cab.CabID,
			"error":    err.Error(),
			"timeout":  httputil.IsTimeout(err),
		})
		if httputil.IsTimeout(err) {
			return nil, cerrors.NewHoldAPITimeoutError()
		}
		return nil, cerrors.NewHoldAPIError()
	}

	return &result, nil
}
