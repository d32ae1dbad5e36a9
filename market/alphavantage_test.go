package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/emperance/statify/stats"
)

func TestAlphaVantageDailyCloses(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleSeriesData))
	}))
	defer srv.Close()

	source := NewAlphaVantageSource(
		zerolog.Nop(),
		Endpoint{Rest: srv.URL, APIKey: "demo"},
		time.Second,
	)

	closes, err := source.DailyCloses(context.Background(), "AAPL")
	require.NoError(t, err)

	// oldest first
	require.Equal(t, stats.Sample{178.85, 179.80, 178.19}, closes)

	require.Equal(t, []string{"AAPL"}, gotQuery["symbol"])
	require.Equal(t, []string{"TIME_SERIES_DAILY"}, gotQuery["function"])
	require.Equal(t, []string{"csv"}, gotQuery["datatype"])
	require.Equal(t, []string{"demo"}, gotQuery["apikey"])
}

func TestAlphaVantageDailyClosesErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		source := NewAlphaVantageSource(zerolog.Nop(), Endpoint{Rest: srv.URL}, time.Second)
		_, err := source.DailyCloses(context.Background(), "AAPL")
		require.Error(t, err)
	})

	t.Run("empty series", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("timestamp,open,high,low,close,volume\n"))
		}))
		defer srv.Close()

		source := NewAlphaVantageSource(zerolog.Nop(), Endpoint{Rest: srv.URL}, time.Second)
		_, err := source.DailyCloses(context.Background(), "AAPL")
		require.Error(t, err)
	})
}
