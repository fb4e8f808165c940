package searchcabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabs-workers/internal/booking"
	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/location"
)

type placeFixture struct {
	predictions string
	details     string
}

// newTestHandler wires the handler against httptest doubles for the places,
// details and search APIs. Fixtures are keyed by the autocomplete input.
func newTestHandler(t *testing.T, fixtures map[string]placeFixture, searchHandler http.HandlerFunc) (*Handler, *int32) {
	t.Helper()

	places := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fx, ok := fixtures[r.URL.Query().Get("input")]
		if !ok {
			w.Write([]byte(`{"status": "ZERO_RESULTS", "predictions": []}`))
			return
		}
		w.Write([]byte(`{"status": "OK", "predictions": ` + fx.predictions + `}`))
	}))
	t.Cleanup(places.Close)

	details := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		placeID := r.URL.Query().Get("placeId")
		for _, fx := range fixtures {
			if fx.details != "" {
				var d map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(fx.details), &d))
				if d["place_id"] == placeID {
					w.Write([]byte(fx.details))
					return
				}
			}
		}
		http.Error(w, "unknown place", http.StatusNotFound)
	}))
	t.Cleanup(details.Close)

	var searchCalls int32
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&searchCalls, 1)
		searchHandler(w, r)
	}))
	t.Cleanup(search.Close)

	log := logger.NewTestLogger(t)
	resolver := location.NewResolver(
		location.NewPlacesClient(location.PlacesConfig{BaseURL: places.URL, APIKey: "test-key"}, log),
		location.NewDetailsClient(location.DetailsConfig{BaseURL: details.URL}, log),
		location.ReturnAsData{},
		3,
		log,
	)
	cabs := booking.NewClient(booking.ClientConfig{SearchURL: search.URL}, log)

	return NewHandler(LoadConfig(), resolver, cabs, nil, log), &searchCalls
}

func uniqueFixtures() map[string]placeFixture {
	return map[string]placeFixture{
		"mg road": {
			predictions: `[{"place_id": "pid-src", "description": "MG Road, Bengaluru", "structured_formatting": {"main_text": "MG Road"}}]`,
			details:     `{"place_id": "pid-src", "address": "MG Road, Bengaluru"}`,
		},
		"airport": {
			predictions: `[{"place_id": "pid-dst", "description": "Kempegowda International Airport", "structured_formatting": {"main_text": "Kempegowda Airport"}}]`,
			details:     `{"place_id": "pid-dst", "address": "Kempegowda International Airport"}`,
		},
	}
}

func okSearch(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	json.NewDecoder(r.Body).Decode(&payload)
	w.Write([]byte(`{
		"searchId": "srch-1",
		"totalDistanceKm": 38.4,
		"totalDurationMin": 55,
		"cabs": [{"cabId": "cab-1", "category": "sedan", "model": "Dzire", "fare": 950, "currency": "INR"}]
	}`))
}

func TestExecuteHappyPath(t *testing.T) {
	h, searchCalls := newTestHandler(t, uniqueFixtures(), okSearch)

	output, err := h.execute(context.Background(), &Input{
		Source:      "mg road",
		Destination: "airport",
		PickupDate:  "15-09-2026",
		PickupTime:  "2:30 PM",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusResults, output.SearchStatus)
	assert.Equal(t, "srch-1", output.SearchID)
	assert.Equal(t, "MG Road, Bengaluru", output.SourceAddress)
	assert.Equal(t, "Kempegowda International Airport", output.DestinationAddress)
	require.Len(t, output.Cabs, 1)
	assert.Equal(t, "cab-1", output.Cabs[0].CabID)
	assert.NotZero(t, output.PickupTimeMs)
	assert.Equal(t, int32(1), atomic.LoadInt32(searchCalls))
}

func TestExecuteSourceDisambiguationWinsOverDestination(t *testing.T) {
	fixtures := uniqueFixtures()
	fixtures["station"] = placeFixture{
		predictions: `[
			{"place_id": "pid-a", "description": "City Station A", "structured_formatting": {"main_text": "Station A"}},
			{"place_id": "pid-b", "description": "City Station B", "structured_formatting": {"main_text": "Station B"}}
		]`,
	}
	fixtures["market"] = placeFixture{
		predictions: `[
			{"place_id": "pid-c", "description": "Market C", "structured_formatting": {"main_text": "Market C"}},
			{"place_id": "pid-d", "description": "Market D", "structured_formatting": {"main_text": "Market D"}}
		]`,
	}
	h, searchCalls := newTestHandler(t, fixtures, okSearch)

	output, err := h.execute(context.Background(), &Input{
		Source:      "station",
		Destination: "market",
		PickupDate:  "15-09-2026",
		PickupTime:  "14:30",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDisambiguationNeeded, output.SearchStatus)
	assert.Equal(t, "source", output.Role)
	require.Len(t, output.Options, 2)
	// No search happens until both ends are settled.
	assert.Zero(t, atomic.LoadInt32(searchCalls))
}

func TestExecuteExplicitPlaceIDsSettleDisambiguation(t *testing.T) {
	h, _ := newTestHandler(t, uniqueFixtures(), okSearch)

	output, err := h.execute(context.Background(), &Input{
		Source:             "whatever",
		Destination:        "whatever else",
		SourcePlaceID:      "pid-src",
		DestinationPlaceID: "pid-dst",
		PickupDate:         "2026-09-15",
		PickupTime:         "14:30",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusResults, output.SearchStatus)
}

func TestExecuteResolutionFailurePropagates(t *testing.T) {
	fixtures := uniqueFixtures()
	delete(fixtures, "airport")
	h, searchCalls := newTestHandler(t, fixtures, okSearch)

	_, err := h.execute(context.Background(), &Input{
		Source:      "mg road",
		Destination: "airport",
		PickupDate:  "15-09-2026",
		PickupTime:  "14:30",
	})
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeNoResults, cerrors.CodeOf(err))
	assert.Zero(t, atomic.LoadInt32(searchCalls))
}

func TestExecuteInvalidDateTime(t *testing.T) {
	h, searchCalls := newTestHandler(t, uniqueFixtures(), okSearch)

	_, err := h.execute(context.Background(), &Input{
		Source:      "mg road",
		Destination: "airport",
		PickupDate:  "15/09/2026",
		PickupTime:  "14:30",
	})
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeInvalidDateTime, cerrors.CodeOf(err))
	assert.Zero(t, atomic.LoadInt32(searchCalls))
}

func TestExecuteSearchAPIFault(t *testing.T) {
	h, _ := newTestHandler(t, uniqueFixtures(), func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusServiceUnavailable)
	})

	_, err := h.execute(context.Background(), &Input{
		Source:      "mg road",
		Destination: "airport",
		PickupDate:  "15-09-2026",
		PickupTime:  "14:30",
	})
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeSearchAPIError, cerrors.CodeOf(err))
}
