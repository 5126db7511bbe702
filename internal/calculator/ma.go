package calculator

import (
	"fmt"
	"math"

	"TrendEdge/internal/model"
)

// SMA computes the simple moving average of values over a trailing window.
// The first window-1 outputs are NaN.
func SMA(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("sma window %d: %w", window, model.ErrInvalidParameter)
	}
	out := nanSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

// EMA computes the exponential moving average with smoothing factor 2/(span+1),
// seeded by the first value. Early values are not suppressed.
func EMA(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, fmt.Errorf("ema span %d: %w", span, model.ErrInvalidParameter)
	}
	return smooth(values, 2.0/float64(span+1)), nil
}

// smooth applies recursive exponential smoothing (adjust=false) with factor alpha.
func smooth(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Closes extracts the close prices of bars.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
