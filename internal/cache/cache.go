// Package cache holds downloaded price series between loads so repeated scans
// of the same symbol, window and interval do not hit the data provider again.
package cache

import (
	"context"
	"fmt"
	"time"

	"TrendEdge/internal/model"
)

// Key identifies one cached series.
type Key struct {
	Symbol   string
	Period   string
	Interval string
}

// KeyFor derives the cache key of a bar request. Absolute ranges are folded
// into the period component.
func KeyFor(req model.BarRequest) Key {
	period := req.Period
	if req.HasRange() {
		period = req.Start.UTC().Format(time.DateOnly) + ".."
		if !req.End.IsZero() {
			period += req.End.UTC().Format(time.DateOnly)
		}
	}
	return Key{Symbol: req.Symbol, Period: period, Interval: req.Interval}
}

func (k Key) String() string {
	return fmt.Sprintf("bars:%s:%s:%s", k.Symbol, k.Period, k.Interval)
}

// Cache stores price series with a time-to-live.
type Cache interface {
	Get(ctx context.Context, key Key) ([]model.OHLCV, bool, error)
	Set(ctx context.Context, key Key, bars []model.OHLCV) error
}

func clone(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	return out
}
