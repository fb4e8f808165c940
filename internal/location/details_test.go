package location

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabs-workers/internal/common/logger"
)

func TestFetchPreservesUnknownFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pid-1", r.URL.Query().Get("placeId"))
		w.Write([]byte(`{
			"place_id": "pid-1",
			"address": "Kempegowda International Airport, Bengaluru",
			"pincode": "560300",
			"city": "Bengaluru",
			"latitude": 13.1986,
			"longitude": 77.7066,
			"isAirport": true,
			"locusId": {"cluster": "blr-apt"}
		}`))
	}))
	defer srv.Close()

	client := NewDetailsClient(DetailsConfig{BaseURL: srv.URL}, logger.NewTestLogger(t))

	loc, err := client.Fetch(context.Background(), "pid-1")
	require.NoError(t, err)
	require.NotNil(t, loc)

	assert.Equal(t, "pid-1", loc.Identifier)
	assert.Equal(t, "Kempegowda International Airport, Bengaluru", loc.Address)
	assert.Equal(t, "560300", loc.Fields["pincode"])
	assert.Equal(t, true, loc.Fields["isAirport"])
	assert.Equal(t, map[string]interface{}{"cluster": "blr-apt"}, loc.Fields["locusId"])

	// The passthrough fields survive a marshal round trip.
	data, err := json.Marshal(loc)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "pid-1", raw["place_id"])
	assert.Equal(t, "560300", raw["pincode"])
	assert.Equal(t, "Bengaluru", raw["city"])
}

func TestFetchSubstitutesRequestedIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address": "MG Road, Bengaluru"}`))
	}))
	defer srv.Close()

	client := NewDetailsClient(DetailsConfig{BaseURL: srv.URL}, logger.NewTestLogger(t))

	loc, err := client.Fetch(context.Background(), "pid-9")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "pid-9", loc.Identifier)
}

func TestFetchEmptyIdentifierSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := NewDetailsClient(DetailsConfig{BaseURL: srv.URL}, logger.NewTestLogger(t))

	loc, err := client.Fetch(context.Background(), "  ")
	assert.NoError(t, err)
	assert.Nil(t, loc)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchUpstreamFaultReturnsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewDetailsClient(DetailsConfig{BaseURL: srv.URL}, logger.NewTestLogger(t))

	loc, err := client.Fetch(context.Background(), "pid-1")
	assert.NoError(t, err)
	assert.Nil(t, loc)
}
