package calculator

import "TrendEdge/internal/model"

// FrameParams holds the lookback lengths used to build a Frame.
type FrameParams struct {
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	TrendSMA   int
	RSILength  int
	BBWindow   int
	BBK        float64
	SMAFast    int
	SMAMid     int
	SMASlow    int
}

// BuildFrame computes every indicator series for bars.
func BuildFrame(symbol string, bars []model.OHLCV, p FrameParams) (*model.Frame, error) {
	closes := Closes(bars)

	macd, err := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err != nil {
		return nil, err
	}
	emaFast, err := EMA(closes, p.MACDFast)
	if err != nil {
		return nil, err
	}
	emaSlow, err := EMA(closes, p.MACDSlow)
	if err != nil {
		return nil, err
	}
	rsi, err := RSI(closes, p.RSILength)
	if err != nil {
		return nil, err
	}
	bands, err := Bollinger(closes, p.BBWindow, p.BBK)
	if err != nil {
		return nil, err
	}

	f := &model.Frame{
		Symbol:     symbol,
		Bars:       bars,
		EMAFast:    emaFast,
		EMASlow:    emaSlow,
		RSI:        rsi,
		MACD:       macd.Line,
		MACDSignal: macd.Signal,
		MACDHist:   macd.Histogram,
		BBBasis:    bands.Basis,
		BBUpper:    bands.Upper,
		BBLower:    bands.Lower,
		ADL:        ADL(bars),
	}

	smas := []struct {
		window int
		dst    *[]float64
	}{
		{p.TrendSMA, &f.SMATrend},
		{p.SMAFast, &f.SMAFast},
		{p.SMAMid, &f.SMAMid},
		{p.SMASlow, &f.SMASlow},
	}
	for _, s := range smas {
		series, err := SMA(closes, s.window)
		if err != nil {
			return nil, err
		}
		*s.dst = series
	}
	return f, nil
}

// Warmup returns the number of bars a column needs before its first defined value.
func (p FrameParams) Warmup(c model.Column) int {
	switch c {
	case model.ColSMATrend:
		return p.TrendSMA
	case model.ColSMAFast:
		return p.SMAFast
	case model.ColSMAMid:
		return p.SMAMid
	case model.ColSMASlow:
		return p.SMASlow
	case model.ColRSI:
		return p.RSILength + 1
	case model.ColBBBasis, model.ColBBUpper, model.ColBBLower:
		return p.BBWindow
	case model.ColEMAFast:
		return p.MACDFast
	case model.ColEMASlow, model.ColMACD, model.ColMACDSignal, model.ColMACDHist:
		// EMA values are never NaN; MACD still needs the slow span of bars.
		return p.MACDSlow
	}
	return 1
}

// MinBars returns the longest warm-up among cols.
func (p FrameParams) MinBars(cols []model.Column) int {
	n := 1
	for _, c := range cols {
		if w := p.Warmup(c); w > n {
			n = w
		}
	}
	return n
}
