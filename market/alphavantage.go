package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/emperance/statify/stats"
	"github.com/emperance/statify/telemetry"
)

const (
	alphaVantageRestURL       = "https://www.alphavantage.co/query"
	alphaVantageDailyFunction = "TIME_SERIES_DAILY"
)

var _ Source = (*AlphaVantageSource)(nil)

// AlphaVantageSource fetches daily stock price series from the
// AlphaVantage API.
//
// REF: https://www.alphavantage.co/documentation/
type AlphaVantageSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewAlphaVantageSource creates a new AlphaVantageSource. An empty
// endpoint Rest falls back to the public API URL.
func NewAlphaVantageSource(logger zerolog.Logger, endpoint Endpoint, timeout time.Duration) *AlphaVantageSource {
	restURL := alphaVantageRestURL
	if endpoint.Rest != "" {
		restURL = endpoint.Rest
	}

	return &AlphaVantageSource{
		baseURL: restURL,
		apiKey:  endpoint.APIKey,
		client:  newDefaultHTTPClient(timeout),
		logger:  logger.With().Str("provider", "alphavantage").Logger(),
	}
}

// DailyCloses fetches the daily series for symbol and returns the closing
// prices oldest first.
func (s *AlphaVantageSource) DailyCloses(ctx context.Context, symbol string) (stats.Sample, error) {
	telemetry.IncrMarketFetch(symbol)

	values, err := s.fetchSeries(ctx, symbol)
	if err != nil {
		telemetry.IncrMarketFailure(symbol)
		return nil, err
	}

	closes := make([]float64, len(values))
	for i, v := range values {
		closes[i] = v.Close
	}
	return stats.ParseValues(closes), nil
}

func (s *AlphaVantageSource) fetchSeries(ctx context.Context, symbol string) ([]*SeriesValue, error) {
	query := url.Values{}
	query.Set("function", alphaVantageDailyFunction)
	query.Set("symbol", symbol)
	query.Set("datatype", "csv")
	query.Set("apikey", s.apiKey)

	path := fmt.Sprintf("%s?%s", s.baseURL, query.Encode())

	s.logger.Debug().Str("symbol", symbol).Msg("querying alphavantage api")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make AlphaVantage series request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkHTTPStatus(resp); err != nil {
		return nil, err
	}

	values, err := ParseSeriesData(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AlphaVantage series response: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty series for symbol %s", symbol)
	}

	return values, nil
}
