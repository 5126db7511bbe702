package calculator

import (
	"fmt"

	"TrendEdge/internal/model"
)

// RSI computes the Wilder-style relative strength index over closes.
//
// Gains and losses are smoothed recursively with factor 1/length, seeded by the
// first price change. A zero average loss yields 100. Values before index
// length are NaN.
func RSI(closes []float64, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("rsi length %d: %w", length, model.ErrInvalidParameter)
	}
	out := nanSeries(len(closes))
	if len(closes) < 2 {
		return out, nil
	}

	alpha := 1.0 / float64(length)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		if i >= length {
			out[i] = rsiValue(avgGain, avgLoss)
		}
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
