package resolvelocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/location"
)

func newTestHandler(t *testing.T, placesHandler, detailsHandler http.HandlerFunc) *Handler {
	t.Helper()

	places := httptest.NewServer(placesHandler)
	t.Cleanup(places.Close)
	details := httptest.NewServer(detailsHandler)
	t.Cleanup(details.Close)

	log := logger.NewTestLogger(t)
	resolver := location.NewResolver(
		location.NewPlacesClient(location.PlacesConfig{BaseURL: places.URL, APIKey: "test-key"}, log),
		location.NewDetailsClient(location.DetailsConfig{BaseURL: details.URL}, log),
		location.ReturnAsData{},
		3,
		log,
	)
	return NewHandler(LoadConfig(), resolver, log)
}

func singleMatchPlaces(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{
		"status": "OK",
		"predictions": [{
			"place_id": "pid-mg",
			"description": "MG Road, Bengaluru",
			"structured_formatting": {"main_text": "MG Road"}
		}]
	}`))
}

func multiMatchPlaces(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{
		"status": "OK",
		"predictions": [
			{"place_id": "pid-1", "description": "Airport Road, Bengaluru", "structured_formatting": {"main_text": "Airport Road"}},
			{"place_id": "pid-2", "description": "Airport Road, Pune", "structured_formatting": {"main_text": "Airport Road"}}
		]
	}`))
}

func mgRoadDetails(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"place_id": "pid-mg", "address": "MG Road, Bengaluru", "pincode": "560001"}`))
}

func TestExecuteResolvesUniqueMatch(t *testing.T) {
	h := newTestHandler(t, singleMatchPlaces, mgRoadDetails)

	output, err := h.execute(context.Background(), &Input{Role: "source", Query: "mg road"})
	require.NoError(t, err)

	assert.Equal(t, StatusResolved, output.ResolutionStatus)
	assert.Equal(t, "source", output.Role)
	require.NotNil(t, output.Location)
	assert.Equal(t, "pid-mg", output.Location.Identifier)
	assert.Equal(t, "560001", output.Location.Fields["pincode"])
}

func TestExecuteReturnsDisambiguation(t *testing.T) {
	h := newTestHandler(t, multiMatchPlaces, mgRoadDetails)

	output, err := h.execute(context.Background(), &Input{Role: "destination", Query: "airport road"})
	require.NoError(t, err)

	assert.Equal(t, StatusDisambiguationNeeded, output.ResolutionStatus)
	require.Len(t, output.Options, 2)
	assert.Equal(t, 1, output.Options[0].Number)
	assert.Equal(t, "pid-1", output.Options[0].Identifier)
	assert.Contains(t, output.Message, "airport road")
	assert.Nil(t, output.Location)
}

func TestExecuteResubmitWithPlaceID(t *testing.T) {
	// Discovery must not run when a placeId is supplied.
	h := newTestHandler(t,
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("autocomplete called despite explicit placeId")
		},
		mgRoadDetails,
	)

	output, err := h.execute(context.Background(), &Input{Role: "source", Query: "whatever", PlaceID: "pid-mg"})
	require.NoError(t, err)

	assert.Equal(t, StatusResolved, output.ResolutionStatus)
	assert.Equal(t, "pid-mg", output.Location.Identifier)
}

func TestExecuteNoResults(t *testing.T) {
	h := newTestHandler(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "ZERO_RESULTS", "predictions": []}`))
		},
		mgRoadDetails,
	)

	output, err := h.execute(context.Background(), &Input{Role: "source", Query: "xyzzy"})
	require.NoError(t, err)

	assert.Equal(t, StatusError, output.ResolutionStatus)
	assert.Equal(t, string(cerrors.ErrCodeNoResults), output.ErrorCode)
	assert.Contains(t, output.Message, "xyzzy")
}

func TestExecuteConfigurationErrorPropagates(t *testing.T) {
	log := logger.NewTestLogger(t)
	resolver := location.NewResolver(
		location.NewPlacesClient(location.PlacesConfig{BaseURL: "http://places.invalid"}, log),
		location.NewDetailsClient(location.DetailsConfig{BaseURL: "http://details.invalid"}, log),
		location.ReturnAsData{},
		3,
		log,
	)
	h := NewHandler(LoadConfig(), resolver, log)

	_, err := h.execute(context.Background(), &Input{Role: "source", Query: "mg road"})
	require.Error(t, err)
	assert.True(t, cerrors.IsConfiguration(err))
}
