package calculator

import "TrendEdge/internal/model"

// MoneyFlowVolume returns the per-bar money flow volume. A flat bar
// (high == low) contributes zero.
func MoneyFlowVolume(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		rng := b.High - b.Low
		if rng == 0 {
			continue
		}
		multiplier := ((b.Close - b.Low) - (b.High - b.Close)) / rng
		out[i] = multiplier * b.Volume
	}
	return out
}

// ADL computes the accumulation/distribution line as the running total of
// money flow volume, starting at zero.
func ADL(bars []model.OHLCV) []float64 {
	mfv := MoneyFlowVolume(bars)
	out := make([]float64, len(mfv))
	total := 0.0
	for i, v := range mfv {
		total += v
		out[i] = total
	}
	return out
}
