package model

import (
	"math"
	"time"
)

// Column names one derived series of a Frame.
type Column string

const (
	ColClose      Column = "close"
	ColEMAFast    Column = "ema_fast"
	ColEMASlow    Column = "ema_slow"
	ColSMATrend   Column = "sma_trend"
	ColSMAFast    Column = "sma_fast"
	ColSMAMid     Column = "sma_mid"
	ColSMASlow    Column = "sma_slow"
	ColRSI        Column = "rsi"
	ColMACD       Column = "macd"
	ColMACDSignal Column = "macd_signal"
	ColMACDHist   Column = "macd_hist"
	ColBBBasis    Column = "bb_basis"
	ColBBUpper    Column = "bb_upper"
	ColBBLower    Column = "bb_lower"
	ColADL        Column = "adl"
)

// Columns lists every derived column in display order.
var Columns = []Column{
	ColEMAFast, ColEMASlow, ColSMATrend, ColSMAFast, ColSMAMid, ColSMASlow,
	ColRSI, ColMACD, ColMACDSignal, ColMACDHist, ColBBBasis, ColBBUpper, ColBBLower, ColADL,
}

// Frame is the time-aligned set of indicator series computed for one symbol.
// Every series has the same length as Bars; undefined values are NaN.
type Frame struct {
	Symbol     string
	Bars       []OHLCV
	EMAFast    []float64
	EMASlow    []float64
	SMATrend   []float64
	SMAFast    []float64
	SMAMid     []float64
	SMASlow    []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	BBBasis    []float64
	BBUpper    []float64
	BBLower    []float64
	ADL        []float64
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Bars) }

// Series returns the series backing a column, or nil for an unknown column.
func (f *Frame) Series(c Column) []float64 {
	switch c {
	case ColEMAFast:
		return f.EMAFast
	case ColEMASlow:
		return f.EMASlow
	case ColSMATrend:
		return f.SMATrend
	case ColSMAFast:
		return f.SMAFast
	case ColSMAMid:
		return f.SMAMid
	case ColSMASlow:
		return f.SMASlow
	case ColRSI:
		return f.RSI
	case ColMACD:
		return f.MACD
	case ColMACDSignal:
		return f.MACDSignal
	case ColMACDHist:
		return f.MACDHist
	case ColBBBasis:
		return f.BBBasis
	case ColBBUpper:
		return f.BBUpper
	case ColBBLower:
		return f.BBLower
	case ColADL:
		return f.ADL
	}
	return nil
}

// value returns row i of column c, NaN when missing.
func (f *Frame) value(c Column, i int) float64 {
	if c == ColClose {
		return f.Bars[i].Close
	}
	s := f.Series(c)
	if i >= len(s) {
		return math.NaN()
	}
	return s[i]
}

// DefinedRows returns the indices of rows where every listed column holds a
// finite value. Rows with any undefined column are dropped, never imputed.
func (f *Frame) DefinedRows(cols []Column) []int {
	rows := make([]int, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		if f.rowDefined(cols, i) {
			rows = append(rows, i)
		}
	}
	return rows
}

func (f *Frame) rowDefined(cols []Column, i int) bool {
	if !Defined(f.Bars[i].Close) {
		return false
	}
	for _, c := range cols {
		if !Defined(f.value(c, i)) {
			return false
		}
	}
	return true
}

// Latest returns the snapshot of the last fully-defined row for cols.
// ok is false when no such row exists.
func (f *Frame) Latest(cols []Column) (snap Snapshot, ok bool) {
	for i := f.Len() - 1; i >= 0; i-- {
		if f.rowDefined(cols, i) {
			return f.Row(i), true
		}
	}
	return Snapshot{}, false
}

// Row returns the snapshot for row i.
func (f *Frame) Row(i int) Snapshot {
	return Snapshot{
		Time:       f.Bars[i].Time,
		Close:      f.Bars[i].Close,
		EMAFast:    f.value(ColEMAFast, i),
		EMASlow:    f.value(ColEMASlow, i),
		SMATrend:   f.value(ColSMATrend, i),
		SMAFast:    f.value(ColSMAFast, i),
		SMAMid:     f.value(ColSMAMid, i),
		SMASlow:    f.value(ColSMASlow, i),
		RSI:        f.value(ColRSI, i),
		MACD:       f.value(ColMACD, i),
		MACDSignal: f.value(ColMACDSignal, i),
		MACDHist:   f.value(ColMACDHist, i),
		BBBasis:    f.value(ColBBBasis, i),
		BBUpper:    f.value(ColBBUpper, i),
		BBLower:    f.value(ColBBLower, i),
		ADL:        f.value(ColADL, i),
	}
}

// Snapshot holds the indicator values of a single frame row at full precision.
// Columns a mode does not consult may be NaN.
type Snapshot struct {
	Time       time.Time
	Close      float64
	EMAFast    float64
	EMASlow    float64
	SMATrend   float64
	SMAFast    float64
	SMAMid     float64
	SMASlow    float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	BBBasis    float64
	BBUpper    float64
	BBLower    float64
	ADL        float64
}

// Defined reports whether v is a usable indicator value.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
