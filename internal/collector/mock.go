package collector

import (
	"context"
	"fmt"
	"time"

	"TrendEdge/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Count int
	Data  map[string][]model.OHLCV
	Errs  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, req model.BarRequest) ([]model.OHLCV, error) {
	if err, ok := m.Errs[req.Symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Data[req.Symbol]; ok {
		return bars, nil
	}
	if m.Data != nil {
		return nil, fmt.Errorf("mock: unknown symbol %s", req.Symbol)
	}
	count := m.Count
	if count <= 0 {
		count = 300
	}
	price := m.Price
	if price <= 0 {
		price = 100
	}
	return GenerateMockBars(price, count), nil
}

// GenerateMockBars returns count daily bars drifting gently upward from basePrice.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	end := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
