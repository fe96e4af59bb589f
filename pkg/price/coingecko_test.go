package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoinGecko_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/simple/price", r.URL.Path)
		require.Equal(t, "arbitrum", r.URL.Query().Get("ids"))
		require.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"arbitrum":{"usd":0.7312}}`))
	}))
	defer server.Close()

	source := NewCoinGecko("arbitrum", "usd", WithBaseURL(server.URL))

	quote, err := source.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0.7312, quote)
}

func TestCoinGecko_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	source := NewCoinGecko("arbitrum", "usd", WithBaseURL(server.URL))

	_, err := source.Current(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "arbitrum")
}

func TestCoinGecko_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewCoinGecko("arbitrum", "usd", WithBaseURL(server.URL))

	_, err := source.Current(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 500")
}

func TestCoinGecko_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := NewCoinGecko("arbitrum", "usd", WithBaseURL(server.URL))

	_, err := source.Current(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limited")
}
