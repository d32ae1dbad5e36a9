package v1

import (
	"time"

	"github.com/emperance/statify/market"
	"github.com/emperance/statify/stats"
)

// Market defines the market watcher contract that the v1 router depends on.
type Market interface {
	GetResult(symbol string) (*stats.Result, bool)
	GetResults() map[string]*stats.Result
	LastSyncTime() time.Time
	Subscribe() (<-chan market.Update, func())
}
