package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"whatsfresh/pkg/logger"
)

var corvallis = Address{Street: "2500 SW Western Blvd", City: "Corvallis", State: "OR", Zip: "97333"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "key", 2*time.Second, nil)
}

func TestGeocodeOK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.Contains(t, r.URL.Query().Get("address"), "Corvallis")
		w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"x","geometry":{"location":{"lat":44.56,"lng":-123.28}}}]}`))
	})

	p, err := client.Geocode(context.Background(), corvallis)
	require.NoError(t, err)
	assert.InDelta(t, 44.56, p.Lat, 1e-9)
	assert.InDelta(t, -123.28, p.Lon, 1e-9)
}

func TestGeocodeZeroResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := client.Geocode(context.Background(), corvallis)
	assert.ErrorIs(t, err, ErrBadAddress)
}

func TestGeocodeIncompleteAddressSkipsProvider(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Geocode(context.Background(), Address{Street: "1 Main St", City: "Newport"})
	assert.ErrorIs(t, err, ErrBadAddress)
	assert.False(t, called)
}

func TestGeocodeProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Geocode(context.Background(), corvallis)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBadAddress))
}

func TestGeocodeDeniedRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	})

	_, err := client.Geocode(context.Background(), corvallis)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestGeocodeLogsWithRequestLogger(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OVER_QUERY_LIMIT","error_message":"slow down"}`))
	})
	core, logs := observer.New(zap.DebugLevel)
	ctx := logger.WithContext(context.Background(), zap.New(core).With(zap.String("request_id", "req-42")))

	_, err := client.Geocode(ctx, corvallis)
	require.Error(t, err)

	entries := logs.FilterMessage("Geocode provider rejected request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "OVER_QUERY_LIMIT", entries[0].ContextMap()["status"])
}
