package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeUsesDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "10.776889", r.URL.Query().Get("lat"))
		assert.Equal(t, "fieldops-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Quận 1, Thành phố Hồ Chí Minh"}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, "fieldops-test", time.Second, nil)
	got := r.Describe(context.Background(), &Point{Lat: 10.776889, Lon: 106.700806})
	assert.Equal(t, "Quận 1, Thành phố Hồ Chí Minh", got)
}

func TestDescribeFallsBackToCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, "", time.Second, nil)
	got := r.Describe(context.Background(), &Point{Lat: 10.776889, Lon: 106.700806})
	assert.Equal(t, "10.77689,106.70081", got)
}

func TestDescribeEmptyName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	_, err := NewResolver(srv.URL, "", time.Second, nil).Reverse(context.Background(), Point{Lat: 1, Lon: 1})
	require.Error(t, err)
}

func TestDescribeUnknown(t *testing.T) {
	r := NewResolver("http://127.0.0.1:1", "", time.Second, nil)
	assert.Equal(t, Unknown, r.Describe(context.Background(), nil))
	assert.Equal(t, Unknown, r.Describe(context.Background(), &Point{}))
	assert.Equal(t, Unknown, r.Describe(context.Background(), &Point{Lat: 91, Lon: 10}))
}
