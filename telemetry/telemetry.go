// Package telemetry wires the process-wide metrics sink and provides the
// labelled counter helpers used across the service.
package telemetry

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-metrics"
)

const serviceName = "statify"

// Metrics exposes the in-memory sink data for the metrics endpoint.
type Metrics struct {
	sink *metrics.InmemSink
}

// Init installs a global in-memory metrics sink. Counters emitted through
// this package are aggregated in ten second intervals and retained for one
// minute.
func Init() (*Metrics, error) {
	sink := metrics.NewInmemSink(10*time.Second, time.Minute)

	cfg := metrics.DefaultConfig(serviceName)
	cfg.EnableHostname = false

	if _, err := metrics.NewGlobal(cfg, sink); err != nil {
		return nil, err
	}

	return &Metrics{sink: sink}, nil
}

// Gather returns the aggregated interval metrics for display.
func (m *Metrics) Gather(req *http.Request) (interface{}, error) {
	return m.sink.DisplayMetrics(nil, req)
}

// symbolLabel returns a label for a market symbol.
func symbolLabel(symbol string) metrics.Label {
	return metrics.Label{Name: "symbol", Value: symbol}
}

// IncrRequest counts an API request by route name.
func IncrRequest(route string) {
	metrics.IncrCounterWithLabels(
		[]string{"api", "request"},
		1,
		[]metrics.Label{{Name: "route", Value: route}},
	)
}

// IncrCalculation counts a completed statistics calculation.
func IncrCalculation() {
	metrics.IncrCounter([]string{"engine", "calculation"}, 1)
}

// IncrEmptyInput counts a calculation rejected for having no valid data.
func IncrEmptyInput() {
	metrics.IncrCounter([]string{"engine", "empty_input"}, 1)
}

// IncrMarketFetch counts a market series fetch for a symbol.
func IncrMarketFetch(symbol string) {
	metrics.IncrCounterWithLabels(
		[]string{"market", "fetch"},
		1,
		[]metrics.Label{symbolLabel(symbol)},
	)
}

// IncrMarketFailure counts a failed market series fetch for a symbol.
func IncrMarketFailure(symbol string) {
	metrics.IncrCounterWithLabels(
		[]string{"market", "fetch", "failure"},
		1,
		[]metrics.Label{symbolLabel(symbol)},
	)
}
