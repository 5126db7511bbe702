package strategy

import (
	"fmt"

	"TrendEdge/internal/model"
)

// Mode selects the classifier rule set.
type Mode string

const (
	// ModeMomentum classifies on MACD histogram, trend SMA and RSI.
	ModeMomentum Mode = "momentum"
	// ModeBreakout looks for SMA-stack exhaustion at the Bollinger bands.
	ModeBreakout Mode = "breakout"
)

// ParseMode resolves a mode name. An empty name selects momentum.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeMomentum:
		return ModeMomentum, nil
	case ModeBreakout:
		return ModeBreakout, nil
	}
	return "", fmt.Errorf("unknown mode %q: %w", s, model.ErrInvalidParameter)
}

// Thresholds holds the fixed rule parameters.
type Thresholds struct {
	Overbought float64
	Oversold   float64
	Tolerance  float64
}

// Required lists the frame columns a mode consults.
func (m Mode) Required() []model.Column {
	if m == ModeBreakout {
		return []model.Column{
			model.ColSMAFast, model.ColSMAMid, model.ColSMASlow,
			model.ColBBUpper, model.ColBBLower,
		}
	}
	return []model.Column{model.ColMACDHist, model.ColSMATrend, model.ColRSI}
}

// Classify derives a signal from snap. ok is false when the mode produced no
// signal (breakout without a setup) or when a consulted value is undefined.
func Classify(m Mode, snap model.Snapshot, th Thresholds) (sig model.Signal, ok bool) {
	if m == ModeBreakout {
		return classifyBreakout(snap, th)
	}
	return classifyMomentum(snap, th)
}

// Rank orders verdicts within a report: lower ranks first.
func Rank(v model.Verdict) int {
	switch v {
	case model.VerdictBullish:
		return 0
	case model.VerdictNeutral:
		return 1
	case model.VerdictBearish:
		return 2
	case model.VerdictBreakoutBearish:
		return 0
	case model.VerdictBreakoutBullish:
		return 1
	}
	return 3
}
