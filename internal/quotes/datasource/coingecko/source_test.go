package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mmbot.com/internal/quotes/datasource/model"
	"mmbot.com/pkg/ratelimit"
	"mmbot.com/pkg/xerr"
)

const okBody = `{"market_data":{"current_price":{"usd":2000},"high_24h":{"usd":2100},"low_24h":{"usd":1900}}}`

func TestSource_Fetch_RequestShape(t *testing.T) {
	var gotPath, gotKey, gotAccept, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get(APIKeyHeader)
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	s := NewSource(srv.URL+"/api/v3/", "demo-key")
	snap, err := s.Fetch(context.Background(), "ethereum")
	require.NoError(t, err)

	assert.Equal(t, model.Snapshot{CurrentPrice: 2000, High24h: 2100, Low24h: 1900}, snap)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/api/v3/coins/ethereum", gotPath)
	assert.Equal(t, "demo-key", gotKey)
	assert.Equal(t, "application/json", gotAccept)
}

func TestSource_Fetch_Errors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		code    int
	}{
		{"bad_status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }, xerr.FeedBadStatus},
		{"server_error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }, xerr.FeedBadStatus},
		{"malformed", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"market_data":{}}`)) }, xerr.FeedInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewSource(srv.URL, "").Fetch(context.Background(), "ethereum")
			require.Error(t, err)
			assert.Equal(t, tc.code, xerr.CodeOf(err))
		})
	}
}

func TestSource_Fetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewSource(url, "").Fetch(context.Background(), "ethereum")
	require.Error(t, err)
	assert.Equal(t, xerr.FeedUnavailable, xerr.CodeOf(err))
}

func TestSource_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	s := NewSource(srv.URL, "")
	s.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := s.Fetch(context.Background(), "ethereum")
	require.Error(t, err)
	assert.Equal(t, xerr.FeedUnavailable, xerr.CodeOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSource_Fetch_RateLimited(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	s := NewSource(srv.URL, "")
	s.Limiter = ratelimit.NewStore(0, 1, time.Minute)

	_, err := s.Fetch(context.Background(), "ethereum")
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), "ethereum")
	assert.Equal(t, xerr.FeedRateLimited, xerr.CodeOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "limited call must not reach the feed")
}

func TestSource_Fetch_BreakerOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSource(srv.URL, "")
	s.Breakers = ratelimit.NewManager(ratelimit.Rule{TripConsecutiveFailures: 2, Timeout: time.Hour}, nil)

	for i := 0; i < 2; i++ {
		_, err := s.Fetch(context.Background(), "ethereum")
		assert.Equal(t, xerr.FeedBadStatus, xerr.CodeOf(err))
	}

	_, err := s.Fetch(context.Background(), "ethereum")
	assert.Equal(t, xerr.FeedCircuitOpen, xerr.CodeOf(err))
	assert.True(t, xerr.IsFeed(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
