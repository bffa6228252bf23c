package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-api-key-123"

func TestFetchFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/fundamentals", r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get("x-api-key"))
		assert.Equal(t, "dk1,dk1_sea", r.URL.Query().Get("asset_keys"))
		assert.Equal(t, "11", r.URL.Query().Get("forecast_hours"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":200,"data":[
			{"forecast_time":"2024-06-01T09:00:00Z","value_time":"2024-06-02T10:00:00Z","asset_key":"dk1_sea","forecast_type":"wind","cor_power":120.5}
		]}`))
	}))
	defer srv.Close()

	c := NewVendorClient(testKey, srv.URL+"/")
	recs, err := c.FetchFundamentals(context.Background(), FundamentalsParams{
		From:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		AssetKeys:     []string{"dk1", "dk1_sea"},
		ForecastHours: []int{11},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "dk1_sea", recs[0].AssetKey)
	assert.Equal(t, 120.5, recs[0].CorPower)
	assert.True(t, recs[0].ValueTime.Equal(time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)))
}

func TestFetchActualProduction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/actuals/production", r.URL.Path)
		assert.Equal(t, "DK1", r.URL.Query().Get("zones"))
		_, _ = w.Write([]byte(`{"status_code":200,"data":[
			{"delivery_start":"2024-06-02T10:00:00Z","bidding_zone":"DK1","updated_at":"2024-06-02T12:00:00Z","solar":5,"wind_onshore":null}
		]}`))
	}))
	defer srv.Close()

	c := NewVendorClient(testKey, srv.URL)
	recs, err := c.FetchActualProduction(context.Background(), ActualsParams{
		From:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Zones: []string{"DK1"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Solar)
	assert.Equal(t, 5.0, *recs[0].Solar)
	assert.Nil(t, recs[0].WindOnshore)
}

func TestVendorErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"forbidden", http.StatusForbidden, "INVALID_API_KEY"},
		{"unauthorized", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"rate limited", http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"server error", http.StatusInternalServerError, "API_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewVendorClient(testKey, srv.URL)
			_, err := c.FetchActualProduction(context.Background(), ActualsParams{
				From: time.Unix(0, 0), To: time.Unix(3600, 0), Zones: []string{"DK1"},
			})
			var vErr *VendorError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.code, vErr.Code)
			assert.Equal(t, tt.status, vErr.StatusCode)
			if tt.status == http.StatusTooManyRequests {
				assert.Equal(t, "30", vErr.RetryAfter)
			}
		})
	}
}

func TestVendorValidation(t *testing.T) {
	ctx := context.Background()
	from, to := time.Unix(0, 0), time.Unix(3600, 0)

	_, err := NewVendorClient("", "http://localhost").FetchActualProduction(ctx, ActualsParams{From: from, To: to, Zones: []string{"DK1"}})
	var vErr *VendorError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "MISSING_API_KEY", vErr.Code)

	_, err = NewVendorClient("short", "http://localhost").FetchActualProduction(ctx, ActualsParams{From: from, To: to, Zones: []string{"DK1"}})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "INVALID_API_KEY_FORMAT", vErr.Code)

	c := NewVendorClient(testKey, "http://localhost")
	_, err = c.FetchFundamentals(ctx, FundamentalsParams{From: from, To: to})
	assert.Error(t, err)
	_, err = c.FetchActualProduction(ctx, ActualsParams{From: to, To: from, Zones: []string{"DK1"}})
	assert.Error(t, err)
}

func TestVendorCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"status_code":200,"data":[]}`))
	}))
	defer srv.Close()

	c := NewVendorClient(testKey, srv.URL)
	c.Cache = NewResponseCache(time.Minute)
	p := ActualsParams{From: time.Unix(0, 0), To: time.Unix(3600, 0), Zones: []string{"DK2"}}

	for i := 0; i < 3; i++ {
		_, err := c.FetchActualProduction(context.Background(), p)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 1, c.Cache.Len())
}

func TestResponseCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", []byte("x"))
	body, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("x"), body)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", []byte("y"))
	assert.Equal(t, 1, c.Len(), "expired entries are dropped on Set")

	c.Clear()
	assert.Equal(t, 0, c.Len())

	var nilCache *ResponseCache
	nilCache.Set("a", nil)
	_, ok = nilCache.Get("a")
	assert.False(t, ok)
}
