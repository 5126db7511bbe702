package strategy

import (
	"strings"

	"TrendEdge/internal/model"
)

// classifyMomentum applies the trend rule:
// Bullish: hist > 0, close > SMA, RSI < overbought.
// Bearish: hist < 0, close < SMA, RSI > oversold.
func classifyMomentum(s model.Snapshot, th Thresholds) (model.Signal, bool) {
	if !model.Defined(s.MACDHist) || !model.Defined(s.SMATrend) || !model.Defined(s.RSI) || !model.Defined(s.Close) {
		return model.Signal{}, false
	}

	verdict := model.VerdictNeutral
	switch {
	case s.MACDHist > 0 && s.Close > s.SMATrend && s.RSI < th.Overbought:
		verdict = model.VerdictBullish
	case s.MACDHist < 0 && s.Close < s.SMATrend && s.RSI > th.Oversold:
		verdict = model.VerdictBearish
	}
	return model.Signal{Verdict: verdict, Notes: momentumNotes(s, th)}, true
}

func momentumNotes(s model.Snapshot, th Thresholds) string {
	notes := make([]string, 0, 3)
	switch {
	case s.MACDHist > 0:
		notes = append(notes, "MACD ↑")
	case s.MACDHist < 0:
		notes = append(notes, "MACD ↓")
	default:
		notes = append(notes, "MACD →")
	}
	switch {
	case s.RSI < th.Oversold:
		notes = append(notes, "RSI oversold")
	case s.RSI > th.Overbought:
		notes = append(notes, "RSI overbought")
	}
	if s.Close > s.SMATrend {
		notes = append(notes, "Trend Up")
	} else {
		notes = append(notes, "Trend Down")
	}
	return strings.Join(notes, ", ")
}
