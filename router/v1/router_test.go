package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/emperance/statify/config"
	"github.com/emperance/statify/history"
	"github.com/emperance/statify/market"
	v1 "github.com/emperance/statify/router/v1"
	"github.com/emperance/statify/stats"
)

var _ v1.Market = (*mockMarket)(nil)

type mockMarket struct {
	results map[string]*stats.Result
	updates chan market.Update
}

func newMockMarket(t *testing.T, samples map[string]string) *mockMarket {
	t.Helper()
	m := &mockMarket{
		results: make(map[string]*stats.Result),
		updates: make(chan market.Update, 8),
	}
	for symbol, raw := range samples {
		res, err := stats.ComputeAll(stats.Parse(raw), 0)
		if err != nil {
			t.Fatalf("bad sample for %s: %v", symbol, err)
		}
		m.results[symbol] = res
	}
	return m
}

func (m *mockMarket) GetResult(symbol string) (*stats.Result, bool) {
	res, ok := m.results[symbol]
	return res, ok
}

func (m *mockMarket) GetResults() map[string]*stats.Result {
	return m.results
}

func (m *mockMarket) LastSyncTime() time.Time {
	return time.Now()
}

func (m *mockMarket) Subscribe() (<-chan market.Update, func()) {
	return m.updates, func() {}
}

type mockMetrics struct{}

func (mockMetrics) Gather(*http.Request) (interface{}, error) {
	return map[string]string{"sink": "inmem"}, nil
}

type RouterTestSuite struct {
	suite.Suite

	mux    *mux.Router
	router *v1.Router
	store  history.Store
}

// SetupSuite executes once before the suite's tests are executed.
func (rts *RouterTestSuite) SetupSuite() {
	mux := mux.NewRouter()
	cfg := config.Config{
		Server: config.Server{
			AllowedOrigins: []string{},
			VerboseCORS:    false,
		},
		Precision: 4,
		History:   config.History{Limit: 10},
	}

	mkt := newMockMarket(rts.T(), map[string]string{
		"AAPL": "178.85, 179.80, 178.19",
	})

	rts.store = history.NewMemoryStore(10)
	r := v1.New(zerolog.Nop(), cfg, rts.store, mkt, mockMetrics{})
	r.RegisterRoutes(mux, v1.APIPathPrefix)

	rts.mux = mux
	rts.router = r
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (rts *RouterTestSuite) executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	rts.mux.ServeHTTP(rr, req)

	return rr
}

func (rts *RouterTestSuite) TestHealthz() {
	req, err := http.NewRequest("GET", "/api/v1/healthz", nil)
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var respBody map[string]interface{}
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &respBody))
	rts.Require().Equal(respBody["status"], v1.StatusAvailable)
}

func (rts *RouterTestSuite) TestCalculateString() {
	body := `{"data": "1, 2, 3, 4, 5, 6, 7, 8", "classes": 4}`
	req, err := http.NewRequest("POST", "/api/v1/statistics", strings.NewReader(body))
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var entry history.Entry
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &entry))
	rts.Require().NotEmpty(entry.ID)
	rts.Require().Equal(8, entry.Result.Count)
	rts.Require().Equal(4.5, entry.Result.Mean)
	rts.Require().Equal(2.5, entry.Result.Q1)
	rts.Require().Equal(6.5, entry.Result.Q3)
}

func (rts *RouterTestSuite) TestCalculateArray() {
	body := `{"data": [2, 4, 4, 4, 5, 5, 7, 9]}`
	req, err := http.NewRequest("POST", "/api/v1/statistics", strings.NewReader(body))
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var entry history.Entry
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &entry))
	rts.Require().Equal(4.0, entry.Result.PopulationVariance)
}

func (rts *RouterTestSuite) TestCalculateDisplay() {
	body := `{"data": [2, 4, 4, 4, 5, 5, 7, 9]}`
	req, err := http.NewRequest("POST", "/api/v1/statistics", strings.NewReader(body))
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var resp struct {
		Display map[string]string `json:"display"`
	}
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &resp))
	rts.Require().Equal("2.1381", resp.Display["sample_std_dev"])
	rts.Require().Equal("4", resp.Display["population_variance"])
	rts.Require().Equal("4", resp.Display["mode"])
}

func TestCalculatePrecision(t *testing.T) {
	m := mux.NewRouter()
	cfg := config.Config{Precision: 2, History: config.History{Limit: 10}}
	r := v1.New(zerolog.Nop(), cfg, history.NewMemoryStore(10), nil, nil)
	r.RegisterRoutes(m, v1.APIPathPrefix)

	body := `{"data": [2, 4, 4, 4, 5, 5, 7, 9]}`
	req := httptest.NewRequest("POST", "/api/v1/statistics", strings.NewReader(body))
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Display map[string]string `json:"display"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got := resp.Display["sample_std_dev"]; got != "2.14" {
		t.Fatalf("expected sample_std_dev 2.14, got %s", got)
	}
	if got := resp.Display["sample_variance"]; got != "4.57" {
		t.Fatalf("expected sample_variance 4.57, got %s", got)
	}
}

func (rts *RouterTestSuite) TestCalculateEmptyInput() {
	for _, body := range []string{
		`{"data": ""}`,
		`{"data": "a, b, c"}`,
		`{}`,
	} {
		req, err := http.NewRequest("POST", "/api/v1/statistics", strings.NewReader(body))
		rts.Require().NoError(err)

		response := rts.executeRequest(req)
		rts.Require().Equal(http.StatusBadRequest, response.Code, "body: %s", body)
	}
}

func (rts *RouterTestSuite) TestCalculateMalformedBody() {
	req, err := http.NewRequest("POST", "/api/v1/statistics", bytes.NewReader([]byte(`{"data": {`)))
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusBadRequest, response.Code)
}

func (rts *RouterTestSuite) TestHistoryRoundTrip() {
	body := `{"data": "10, 20, 30"}`
	req, err := http.NewRequest("POST", "/api/v1/statistics", strings.NewReader(body))
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var entry history.Entry
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &entry))

	req, err = http.NewRequest("GET", "/api/v1/statistics/"+entry.ID, nil)
	rts.Require().NoError(err)

	response = rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var fetched history.Entry
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &fetched))
	rts.Require().Equal(entry.ID, fetched.ID)
	rts.Require().Equal(20.0, fetched.Result.Mean)

	req, err = http.NewRequest("GET", "/api/v1/statistics", nil)
	rts.Require().NoError(err)

	response = rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var entries []history.Entry
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &entries))
	rts.Require().NotEmpty(entries)
}

func (rts *RouterTestSuite) TestHistoryNotFound() {
	req, err := http.NewRequest("GET", "/api/v1/statistics/8ad0e57f-0000-0000-0000-000000000000", nil)
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusNotFound, response.Code)
}

func (rts *RouterTestSuite) TestMarket() {
	req, err := http.NewRequest("GET", "/api/v1/market/AAPL", nil)
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)

	var res stats.Result
	rts.Require().NoError(json.Unmarshal(response.Body.Bytes(), &res))
	rts.Require().Equal(3, res.Count)

	req, err = http.NewRequest("GET", "/api/v1/market/GOOG", nil)
	rts.Require().NoError(err)

	response = rts.executeRequest(req)
	rts.Require().Equal(http.StatusNotFound, response.Code)
}

func (rts *RouterTestSuite) TestMetrics() {
	req, err := http.NewRequest("GET", "/api/v1/metrics", nil)
	rts.Require().NoError(err)

	response := rts.executeRequest(req)
	rts.Require().Equal(http.StatusOK, response.Code)
}

func (rts *RouterTestSuite) TestMarketStream() {
	srv := httptest.NewServer(rts.mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/market/AAPL/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	rts.Require().NoError(err)
	defer conn.Close()

	// the current result is pushed on connect
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var res stats.Result
	rts.Require().NoError(conn.ReadJSON(&res))
	rts.Require().Equal(3, res.Count)
}

func TestMarketDisabled(t *testing.T) {
	m := mux.NewRouter()
	r := v1.New(zerolog.Nop(), config.Config{}, history.NewMemoryStore(1), nil, nil)
	r.RegisterRoutes(m, v1.APIPathPrefix)

	req := httptest.NewRequest("GET", "/api/v1/market/AAPL", nil)
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
