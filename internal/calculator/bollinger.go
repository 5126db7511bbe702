package calculator

import (
	"fmt"
	"math"

	"TrendEdge/internal/model"
)

// Bands holds Bollinger basis and envelope series.
type Bands struct {
	Basis []float64
	Upper []float64
	Lower []float64
}

// Bollinger computes bands at basis ± k population standard deviations of the
// trailing window.
func Bollinger(closes []float64, window int, k float64) (Bands, error) {
	if k < 0 {
		return Bands{}, fmt.Errorf("bollinger k %.2f: %w", k, model.ErrInvalidParameter)
	}
	basis, err := SMA(closes, window)
	if err != nil {
		return Bands{}, err
	}
	upper := nanSeries(len(closes))
	lower := nanSeries(len(closes))
	for i := window - 1; i < len(closes); i++ {
		mean := basis[i]
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		stdev := math.Sqrt(variance / float64(window))
		upper[i] = mean + k*stdev
		lower[i] = mean - k*stdev
	}
	return Bands{Basis: basis, Upper: upper, Lower: lower}, nil
}
