package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/location"
)

func tripEndpoints() (*location.Location, *location.Location) {
	src := &location.Location{
		Identifier: "pid-src",
		Address:    "MG Road, Bengaluru",
		Fields:     map[string]interface{}{"city": "Bengaluru"},
	}
	dst := &location.Location{
		Identifier: "pid-dst",
		Address:    "Kempegowda International Airport",
		Fields:     map[string]interface{}{"isAirport": true},
	}
	return src, dst
}

func TestSearchSendsMergedPayload(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{
			"searchId": "srch-1",
			"totalDistanceKm": 38.4,
			"totalDurationMin": 55,
			"cabs": [
				{"cabId": "cab-1", "category": "sedan", "model": "Dzire", "fare": 950, "currency": "INR"},
				{"cabId": "cab-2", "category": "suv", "model": "Ertiga", "fare": 1350, "currency": "INR"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{SearchURL: srv.URL}, logger.NewTestLogger(t))
	src, dst := tripEndpoints()

	result, err := client.Search(context.Background(), src, dst, 1789000000000)
	require.NoError(t, err)

	assert.Equal(t, "srch-1", result.SearchID)
	assert.Equal(t, 38.4, result.TotalDistanceKm)
	require.Len(t, result.Cabs, 2)
	assert.Equal(t, "cab-1", result.Cabs[0].CabID)
	assert.Equal(t, 950.0, result.Cabs[0].Fare)

	// Each location record carries its own address echo; the echoes are not
	// top-level siblings.
	assert.Equal(t, float64(1789000000000), captured["pickupTime"])
	assert.NotContains(t, captured, "startTimeMs")
	assert.NotContains(t, captured, "sourceText")
	assert.NotContains(t, captured, "destinationText")

	srcPayload := captured["source"].(map[string]interface{})
	assert.Equal(t, "pid-src", srcPayload["place_id"])
	assert.Equal(t, "Bengaluru", srcPayload["city"])
	assert.Equal(t, "MG Road, Bengaluru", srcPayload["sourceText"])

	dstPayload := captured["destination"].(map[string]interface{})
	assert.Equal(t, "pid-dst", dstPayload["place_id"])
	assert.Equal(t, "Kempegowda International Airport", dstPayload["destinationText"])
}

func TestSearchUpstreamFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "stacktrace: java.lang.NullPointerException", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{SearchURL: srv.URL}, logger.NewTestLogger(t))
	src, dst := tripEndpoints()

	_, err := client.Search(context.Background(), src, dst, 0)
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeSearchAPIError, cerrors.CodeOf(err))
	// Upstream detail never leaks into the message.
	assert.NotContains(t, err.Error(), "NullPointerException")
}

func TestSearchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{SearchURL: srv.URL, Timeout: 20 * time.Millisecond}, logger.NewTestLogger(t))
	src, dst := tripEndpoints()

	_, err := client.Search(context.Background(), src, dst, 0)
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeSearchAPITimeout, cerrors.CodeOf(err))
}

func TestHoldSuccess(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"bookingId": "bkg-42", "paymentUrl": "https://pay.example.com/bkg-42"}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{HoldURL: srv.URL}, logger.NewTestLogger(t))

	result, err := client.Hold(context.Background(), "srch-1",
		&Cab{CabID: "cab-1", Category: "sedan"},
		&Passenger{Name: "Asha Rao", Gender: "F", Mobile: "9876543210", CountryCode: "+91", Email: "asha@example.com"},
	)
	require.NoError(t, err)

	assert.Equal(t, "bkg-42", result.BookingID)
	assert.Equal(t, "https://pay.example.com/bkg-42", result.PaymentURL)

	assert.Equal(t, "srch-1", captured["searchId"])
	assert.Equal(t, "cab-1", captured["cabId"])
	passenger := captured["passenger"].(map[string]interface{})
	assert.Equal(t, "Asha Rao", passenger["name"])
	assert.Equal(t, "+91", passenger["countryCode"])
}

func TestHoldUpstreamFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cab already taken", http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{HoldURL: srv.URL}, logger.NewTestLogger(t))

	_, err := client.Hold(context.Background(), "srch-1", &Cab{CabID: "cab-1"}, &Passenger{})
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeHoldAPIError, cerrors.CodeOf(err))
}

func TestHoldTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{HoldURL: srv.URL, Timeout: 20 * time.Millisecond}, logger.NewTestLogger(t))

	_, err := client.Hold(context.Background(), "srch-1", &Cab{CabID: "cab-1"}, &Passenger{})
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeHoldAPITimeout, cerrors.CodeOf(err))
}
