package market

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	pfsync "github.com/emperance/statify/pkg/sync"
	"github.com/emperance/statify/stats"
)

// Update is one watcher notification: a freshly computed result for a
// symbol.
type Update struct {
	Symbol string        `json:"symbol"`
	Result *stats.Result `json:"result"`
}

// Watcher polls the quote source for the configured symbols, keeps the
// latest computed statistics per symbol and fans updates out to
// subscribers.
type Watcher struct {
	logger   zerolog.Logger
	closer   *pfsync.Closer
	source   Source
	symbols  []string
	interval time.Duration
	classes  int

	mtx      sync.RWMutex
	results  map[string]*stats.Result
	lastSync time.Time

	subMtx sync.Mutex
	subs   map[chan Update]struct{}
}

// NewWatcher creates a watcher over the given symbols. classes below 1
// lets each computation fall back to Sturges' rule.
func NewWatcher(
	logger zerolog.Logger,
	source Source,
	symbols []string,
	interval time.Duration,
	classes int,
) *Watcher {
	return &Watcher{
		logger:   logger.With().Str("module", "market").Logger(),
		closer:   pfsync.NewCloser(),
		source:   source,
		symbols:  symbols,
		interval: interval,
		classes:  classes,
		results:  make(map[string]*stats.Result, len(symbols)),
		subs:     make(map[chan Update]struct{}),
	}
}

// Start runs the polling loop in a blocking fashion until the context is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// first tick immediately so subscribers do not wait a full interval
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.closer.Close()
			return ctx.Err()

		case <-w.closer.Done():
			return nil

		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// Stop stops the watcher loop.
func (w *Watcher) Stop() {
	w.closer.Close()
}

// tick fetches every symbol concurrently and publishes the results.
func (w *Watcher) tick(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)

	for _, symbol := range w.symbols {
		symbol := symbol

		g.Go(func() error {
			sample, err := w.source.DailyCloses(ctx, symbol)
			if err != nil {
				w.logger.Err(err).Str("symbol", symbol).Msg("failed to fetch series")
				return nil
			}

			res, err := stats.ComputeAll(sample, w.classes)
			if err != nil {
				w.logger.Err(err).Str("symbol", symbol).Msg("series produced no sample")
				return nil
			}

			w.setResult(symbol, res)
			w.notify(Update{Symbol: symbol, Result: res})
			return nil
		})
	}

	// fetch errors are logged per symbol, never propagated
	_ = g.Wait()
}

func (w *Watcher) setResult(symbol string, res *stats.Result) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.results[symbol] = res
	w.lastSync = time.Now()
}

// GetResult returns the latest computed result for a symbol.
func (w *Watcher) GetResult(symbol string) (*stats.Result, bool) {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	res, ok := w.results[symbol]
	return res, ok
}

// GetResults returns a copy of the latest results for all symbols.
func (w *Watcher) GetResults() map[string]*stats.Result {
	w.mtx.RLock()
	defer w.mtx.RUnlock()

	results := make(map[string]*stats.Result, len(w.results))
	for symbol, res := range w.results {
		results[symbol] = res
	}
	return results
}

// LastSyncTime returns the time of the most recent successful computation.
func (w *Watcher) LastSyncTime() time.Time {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	return w.lastSync
}

// Subscribe registers an update channel. The returned cancel function
// unregisters it and closes the channel.
func (w *Watcher) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	w.subMtx.Lock()
	w.subs[ch] = struct{}{}
	w.subMtx.Unlock()

	cancel := func() {
		w.subMtx.Lock()
		defer w.subMtx.Unlock()
		if _, ok := w.subs[ch]; ok {
			delete(w.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// notify fans an update out to all subscribers, dropping it for any
// subscriber whose buffer is full.
func (w *Watcher) notify(update Update) {
	w.subMtx.Lock()
	defer w.subMtx.Unlock()

	for ch := range w.subs {
		select {
		case ch <- update:
		default:
		}
	}
}
