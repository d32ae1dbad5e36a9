// Package v1 serves the statistics engine over a versioned REST API:
// calculations, calculation history, market-derived statistics and a
// websocket stream of watcher updates.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/emperance/statify/config"
	"github.com/emperance/statify/history"
	"github.com/emperance/statify/stats"
	"github.com/emperance/statify/telemetry"
)

const (
	// APIPathPrefix defines the v1 API path prefix.
	APIPathPrefix = "/api/v1"
)

// Metrics defines the telemetry gathering contract the router depends on.
type Metrics interface {
	Gather(req *http.Request) (interface{}, error)
}

// Router defines the v1 router wrapping the statistics engine and its
// collaborators. Market may be nil when the watcher is disabled.
type Router struct {
	logger   zerolog.Logger
	cfg      config.Config
	store    history.Store
	market   Market
	metrics  Metrics
	upgrader websocket.Upgrader
}

// New creates a new v1 Router.
func New(
	logger zerolog.Logger,
	cfg config.Config,
	store history.Store,
	mkt Market,
	metrics Metrics,
) *Router {
	return &Router{
		logger:  logger.With().Str("module", "router").Logger(),
		cfg:     cfg,
		store:   store,
		market:  mkt,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			// origin policy is enforced by the CORS middleware
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts all v1 routes on the given router with the given
// path prefix.
func (r *Router) RegisterRoutes(rtr *mux.Router, prefix string) {
	v1Router := rtr.PathPrefix(prefix).Subrouter()

	if len(r.cfg.Server.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: r.cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			Debug:          r.cfg.Server.VerboseCORS,
		})
		v1Router.Use(c.Handler)
	}

	chain := alice.New(r.loggingMiddleware)

	v1Router.Handle(
		"/healthz",
		chain.Append(countRoute("healthz")).ThenFunc(r.handleHealthz),
	).Methods(http.MethodGet)

	v1Router.Handle(
		"/statistics",
		chain.Append(countRoute("calculate")).ThenFunc(r.handleCalculate),
	).Methods(http.MethodPost)

	v1Router.Handle(
		"/statistics",
		chain.Append(countRoute("history_list")).ThenFunc(r.handleHistoryList),
	).Methods(http.MethodGet)

	v1Router.Handle(
		"/statistics/{id}",
		chain.Append(countRoute("history_get")).ThenFunc(r.handleHistoryGet),
	).Methods(http.MethodGet)

	v1Router.Handle(
		"/market/{symbol}",
		chain.Append(countRoute("market")).ThenFunc(r.handleMarket),
	).Methods(http.MethodGet)

	v1Router.Handle(
		"/market/{symbol}/stream",
		chain.ThenFunc(r.handleMarketStream),
	).Methods(http.MethodGet)

	v1Router.Handle(
		"/metrics",
		chain.Append(countRoute("metrics")).ThenFunc(r.handleMetrics),
	).Methods(http.MethodGet)
}

// loggingMiddleware logs every request at debug level.
func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.logger.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("handling request")
		next.ServeHTTP(w, req)
	})
}

// countRoute returns middleware counting requests to a named route.
func countRoute(route string) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			telemetry.IncrRequest(route)
			next.ServeHTTP(w, req)
		})
	}
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	resp := healthZResponse{Status: StatusAvailable}
	if r.market != nil {
		resp.LastSync = r.market.LastSyncTime().String()
	}
	writeJSON(r.logger, w, http.StatusOK, resp)
}

// calculateRequest is the POST /statistics body. Data is either a
// delimited string or an array of numbers.
type calculateRequest struct {
	Data    json.RawMessage `json:"data"`
	Classes int             `json:"classes"`
}

// parseSample extracts a sample from the raw data field.
func (cr calculateRequest) parseSample() (stats.Sample, error) {
	if len(cr.Data) == 0 {
		return stats.Sample{}, nil
	}

	var text string
	if err := json.Unmarshal(cr.Data, &text); err == nil {
		return stats.Parse(text), nil
	}

	var values []float64
	if err := json.Unmarshal(cr.Data, &values); err == nil {
		return stats.ParseValues(values), nil
	}

	return nil, fmt.Errorf("data must be a string or an array of numbers")
}

func (r *Router) handleCalculate(w http.ResponseWriter, req *http.Request) {
	var body calculateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(r.logger, w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sample, err := body.parseSample()
	if err != nil {
		writeError(r.logger, w, http.StatusBadRequest, err)
		return
	}

	classes := body.Classes
	if classes < 1 {
		classes = r.cfg.DefaultClasses
	}

	res, err := stats.ComputeAll(sample, classes)
	if err != nil {
		if errors.Is(err, stats.ErrEmptyInput) {
			telemetry.IncrEmptyInput()
			writeError(r.logger, w, http.StatusBadRequest, err)
			return
		}
		writeError(r.logger, w, http.StatusInternalServerError, err)
		return
	}
	telemetry.IncrCalculation()

	entry, err := r.store.Save(req.Context(), res)
	if err != nil {
		r.logger.Err(err).Msg("failed to persist result")
		writeError(r.logger, w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(r.logger, w, http.StatusOK, calculateResponse{
		Entry:   entry,
		Display: displayFields(res, r.cfg.Precision),
	})
}

func (r *Router) handleHistoryList(w http.ResponseWriter, req *http.Request) {
	entries, err := r.store.List(req.Context(), r.cfg.History.Limit)
	if err != nil {
		writeError(r.logger, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(r.logger, w, http.StatusOK, entries)
}

func (r *Router) handleHistoryGet(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	entry, err := r.store.Get(req.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(r.logger, w, http.StatusNotFound, err)
			return
		}
		writeError(r.logger, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(r.logger, w, http.StatusOK, entry)
}

func (r *Router) handleMarket(w http.ResponseWriter, req *http.Request) {
	if r.market == nil {
		writeError(r.logger, w, http.StatusServiceUnavailable, fmt.Errorf("market watcher is disabled"))
		return
	}

	symbol := mux.Vars(req)["symbol"]
	res, ok := r.market.GetResult(symbol)
	if !ok {
		writeError(r.logger, w, http.StatusNotFound, fmt.Errorf("no statistics for symbol %s", symbol))
		return
	}
	writeJSON(r.logger, w, http.StatusOK, res)
}

// handleMarketStream upgrades to a websocket and pushes a result to the
// client on every watcher update for the requested symbol.
func (r *Router) handleMarketStream(w http.ResponseWriter, req *http.Request) {
	if r.market == nil {
		writeError(r.logger, w, http.StatusServiceUnavailable, fmt.Errorf("market watcher is disabled"))
		return
	}
	symbol := mux.Vars(req)["symbol"]

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Err(err).Msg("failed to upgrade websocket")
		return
	}
	defer conn.Close()

	updates, cancel := r.market.Subscribe()
	defer cancel()

	// drain client frames so closes are noticed
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// send the current result immediately when one exists
	if res, ok := r.market.GetResult(symbol); ok {
		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}

	for {
		select {
		case <-clientGone:
			return

		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Symbol != symbol {
				continue
			}
			if err := conn.WriteJSON(update.Result); err != nil {
				r.logger.Debug().Err(err).Msg("dropping websocket client")
				return
			}
		}
	}
}

func (r *Router) handleMetrics(w http.ResponseWriter, req *http.Request) {
	if r.metrics == nil {
		writeError(r.logger, w, http.StatusServiceUnavailable, fmt.Errorf("metrics are disabled"))
		return
	}

	gathered, err := r.metrics.Gather(req)
	if err != nil {
		writeError(r.logger, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(r.logger, w, http.StatusOK, gathered)
}
