// Package market fetches stock quote series from external providers and
// bridges them into statistics samples.
package market

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/emperance/statify/stats"
)

const defaultTimeout = 10 * time.Second

// Source defines the contract a quote provider must implement.
type Source interface {
	// DailyCloses returns the ordered daily closing prices for a symbol,
	// oldest first.
	DailyCloses(ctx context.Context, symbol string) (stats.Sample, error)
}

// Endpoint defines an override setting for a provider's hardcoded REST
// endpoint and API key.
type Endpoint struct {
	Rest   string
	APIKey string
}

// newDefaultHTTPClient returns an HTTP client with sane dial and response
// timeouts for polling quote APIs.
func newDefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
		},
	}
}

// checkHTTPStatus returns an error for any non-2xx response.
func checkHTTPStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, resp.Request.URL.Host)
	}
	return nil
}
