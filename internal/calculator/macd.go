package calculator

import (
	"fmt"

	"TrendEdge/internal/model"
)

// MACDResult holds the three parallel MACD series.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes ema(fast) - ema(slow), its signal EMA and the histogram.
func MACD(closes []float64, fast, slow, signal int) (MACDResult, error) {
	if fast >= slow {
		return MACDResult{}, fmt.Errorf("macd fast %d must be below slow %d: %w", fast, slow, model.ErrInvalidParameter)
	}
	emaFast, err := EMA(closes, fast)
	if err != nil {
		return MACDResult{}, err
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return MACDResult{}, err
	}
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig, err := EMA(line, signal)
	if err != nil {
		return MACDResult{}, err
	}
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return MACDResult{Line: line, Signal: sig, Histogram: hist}, nil
}
