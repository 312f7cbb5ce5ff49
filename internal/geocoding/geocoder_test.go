package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const sampleResponse = `[{
	"lat": "30.2672",
	"lon": "-97.7431",
	"display_name": "123 Congress Ave, Austin, Texas, USA",
	"address": {"suburb": "Downtown", "city": "Austin"}
}]`

func newTestGeocoder(t *testing.T, cacheDir string, handler http.HandlerFunc) (*Geocoder, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	g := NewGeocoder(nil, cacheDir, WithBaseURL(srv.URL+"/"), WithRateLimit(rate.Inf, 1))
	return g, &calls
}

func TestGeocode(t *testing.T) {
	g, calls := newTestGeocoder(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "123 Congress Ave, Austin, TX", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(sampleResponse))
	})

	loc, err := g.Geocode(context.Background(), "123 Congress Ave, Austin, TX")
	require.NoError(t, err)
	assert.InDelta(t, 30.2672, loc.Latitude, 1e-9)
	assert.InDelta(t, -97.7431, loc.Longitude, 1e-9)
	assert.Equal(t, "Downtown", loc.Neighborhood)
	assert.Equal(t, "Austin", loc.City)

	// Same address with different spacing and case is served from cache
	_, err = g.Geocode(context.Background(), "  123 congress ave,  Austin, TX ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGeocode_NeighborhoodFromAddress(t *testing.T) {
	g, _ := newTestGeocoder(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat": "37.77", "lon": "-122.41", "address": {}}]`))
	})

	loc, err := g.Geocode(context.Background(), "1 Market St, San Francisco, CA 94105")
	require.NoError(t, err)
	assert.Equal(t, "San Francisco", loc.Neighborhood)
}

func TestGeocode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		address string
		noHits  bool
	}{
		{name: "No results", status: http.StatusOK, body: `[]`, address: "nowhere", noHits: true},
		{name: "Server error", status: http.StatusInternalServerError, body: ``, address: "somewhere"},
		{name: "Malformed body", status: http.StatusOK, body: `{`, address: "somewhere"},
		{name: "Bad coordinates", status: http.StatusOK, body: `[{"lat": "north", "lon": "1"}]`, address: "somewhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGeocoder(t, "", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			loc, err := g.Geocode(context.Background(), tt.address)
			assert.Error(t, err)
			assert.Nil(t, loc)
			if tt.noHits {
				assert.ErrorIs(t, err, ErrNoResults)
			}
		})
	}
}

func TestGeocode_EmptyAddress(t *testing.T) {
	g, calls := newTestGeocoder(t, "", func(w http.ResponseWriter, r *http.Request) {})

	_, err := g.Geocode(context.Background(), "   ")
	assert.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGeocode_PersistentCache(t *testing.T) {
	dir := t.TempDir()

	g, _ := newTestGeocoder(t, dir, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})
	_, err := g.Geocode(context.Background(), "123 Congress Ave, Austin, TX")
	require.NoError(t, err)

	reloaded, calls := newTestGeocoder(t, dir, func(w http.ResponseWriter, r *http.Request) {
		t.Error("cached address should not reach the server")
	})
	loc, err := reloaded.Geocode(context.Background(), "123 Congress Ave, Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, "Downtown", loc.Neighborhood)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGeocode_RateLimited(t *testing.T) {
	g, _ := newTestGeocoder(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})
	g.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := g.Geocode(context.Background(), "first address")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = g.Geocode(ctx, "second address")
	assert.Error(t, err)
}
