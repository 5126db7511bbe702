package strategy

import (
	"fmt"
	"math"

	"TrendEdge/internal/model"
)

// classifyBreakout checks for an exhausted SMA stack touching a Bollinger band.
// Bearish: SMA5 > SMA10 > SMA20 and close >= upper - tolerance.
// Bullish: SMA5 < SMA10 < SMA20 and close <= lower + tolerance.
// The exit target is SMA5.
func classifyBreakout(s model.Snapshot, th Thresholds) (model.Signal, bool) {
	for _, v := range []float64{s.Close, s.SMAFast, s.SMAMid, s.SMASlow, s.BBUpper, s.BBLower} {
		if !model.Defined(v) {
			return model.Signal{}, false
		}
	}

	var verdict model.Verdict
	var notes string
	switch {
	case s.SMAFast > s.SMAMid && s.SMAMid > s.SMASlow && s.Close >= s.BBUpper-th.Tolerance:
		verdict = model.VerdictBreakoutBearish
		notes = fmt.Sprintf("SMA stack up, close at upper band %.2f", s.BBUpper)
	case s.SMAFast < s.SMAMid && s.SMAMid < s.SMASlow && s.Close <= s.BBLower+th.Tolerance:
		verdict = model.VerdictBreakoutBullish
		notes = fmt.Sprintf("SMA stack down, close at lower band %.2f", s.BBLower)
	default:
		return model.Signal{}, false
	}

	dist := math.Abs(s.Close - s.SMAFast)
	pct := 0.0
	if s.Close != 0 {
		pct = dist / s.Close * 100
	}
	return model.Signal{
		Verdict:     verdict,
		Notes:       fmt.Sprintf("%s, target SMA %.2f", notes, s.SMAFast),
		Target:      s.SMAFast,
		Distance:    dist,
		DistancePct: pct,
	}, true
}
