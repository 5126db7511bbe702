package collector

import (
	"context"

	"TrendEdge/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchBars(ctx context.Context, req model.BarRequest) ([]model.OHLCV, error)
	Name() string
}
