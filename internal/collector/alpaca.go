package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"TrendEdge/internal/model"
)

// alpacaHistoryStart bounds "max" requests; the data API has nothing earlier.
var alpacaHistoryStart = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using the Alpaca market data API.
type AlpacaFetcher struct {
	client alpacaBarsClient
	now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		now: time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func alpacaTimeFrame(interval string) (marketdata.TimeFrame, error) {
	switch interval {
	case model.Interval1m:
		return marketdata.NewTimeFrame(1, marketdata.Min), nil
	case model.Interval5m:
		return marketdata.NewTimeFrame(5, marketdata.Min), nil
	case model.Interval15m:
		return marketdata.NewTimeFrame(15, marketdata.Min), nil
	case model.Interval30m:
		return marketdata.NewTimeFrame(30, marketdata.Min), nil
	case model.Interval1h:
		return marketdata.NewTimeFrame(1, marketdata.Hour), nil
	case model.Interval1d:
		return marketdata.NewTimeFrame(1, marketdata.Day), nil
	case model.Interval1wk:
		return marketdata.NewTimeFrame(1, marketdata.Week), nil
	}
	return marketdata.TimeFrame{}, fmt.Errorf("alpaca: unsupported interval %q", interval)
}

// FetchBars requests split- and dividend-adjusted bars.
func (f *AlpacaFetcher) FetchBars(_ context.Context, req model.BarRequest) ([]model.OHLCV, error) {
	tf, err := alpacaTimeFrame(req.Interval)
	if err != nil {
		return nil, err
	}

	start, end := req.Start, req.End
	if !req.HasRange() {
		var ok bool
		start, ok = model.PeriodStart(req.Period, f.now())
		if !ok {
			return nil, fmt.Errorf("alpaca: unsupported period %q", req.Period)
		}
	}
	if start.IsZero() {
		start = alpacaHistoryStart
	}

	raw, err := f.client.GetBars(req.Symbol, marketdata.GetBarsRequest{
		TimeFrame:  tf,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca get bars: %w", err)
	}

	bars := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		bars[i] = model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return bars, nil
}
