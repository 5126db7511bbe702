// Package report renders a ScanReport as a text table, CSV or JSON rows.
// Values are rounded for display only.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"TrendEdge/internal/model"
)

const (
	valuePlaces = 4
	pctPlaces   = 3
)

// Row is the structured form of one ScanResult. Undefined values are null.
type Row struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval,omitempty"`
	Time     time.Time `json:"time"`
	Close    *float64  `json:"close"`
	Verdict  string    `json:"verdict"`
	Notes    string    `json:"notes"`

	EMAFast    *float64 `json:"ema_fast,omitempty"`
	EMASlow    *float64 `json:"ema_slow,omitempty"`
	SMATrend   *float64 `json:"sma_trend,omitempty"`
	RSI        *float64 `json:"rsi,omitempty"`
	MACD       *float64 `json:"macd,omitempty"`
	MACDSignal *float64 `json:"macd_signal,omitempty"`
	MACDHist   *float64 `json:"macd_hist,omitempty"`
	BBUpper    *float64 `json:"bb_upper,omitempty"`
	BBLower    *float64 `json:"bb_lower,omitempty"`
	ADL        *float64 `json:"adl,omitempty"`

	SMAFast     *float64 `json:"sma_fast,omitempty"`
	SMAMid      *float64 `json:"sma_mid,omitempty"`
	SMASlow     *float64 `json:"sma_slow,omitempty"`
	Target      *float64 `json:"target,omitempty"`
	Distance    *float64 `json:"distance_to_target,omitempty"`
	DistancePct *float64 `json:"distance_to_target_pct,omitempty"`

	Chart *Chart `json:"chart,omitempty"`
}

// Chart carries the full indicator frame of a symbol.
type Chart struct {
	Time    []time.Time           `json:"time"`
	Columns map[string][]*float64 `json:"columns"`
}

// Round returns v rounded to places, or nil when v is undefined.
func Round(v float64, places int32) *float64 {
	if !model.Defined(v) {
		return nil
	}
	r := decimal.NewFromFloat(v).Round(places).InexactFloat64()
	return &r
}

// Rows converts the results of r in report order.
func Rows(r *model.ScanReport) []Row {
	rows := make([]Row, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, NewRow(res))
	}
	return rows
}

// NewRow converts one result.
func NewRow(res model.ScanResult) Row {
	s := res.Snapshot
	row := Row{
		Symbol:   res.Symbol,
		Interval: res.Interval,
		Time:     s.Time,
		Close:    Round(s.Close, valuePlaces),
		Verdict:  string(res.Verdict),
		Notes:    res.Notes,
	}
	if res.Verdict.IsBreakout() {
		row.SMAFast = Round(s.SMAFast, valuePlaces)
		row.SMAMid = Round(s.SMAMid, valuePlaces)
		row.SMASlow = Round(s.SMASlow, valuePlaces)
		row.BBUpper = Round(s.BBUpper, valuePlaces)
		row.BBLower = Round(s.BBLower, valuePlaces)
		row.Target = Round(res.Target, valuePlaces)
		row.Distance = Round(res.Distance, valuePlaces)
		row.DistancePct = Round(res.DistancePct, pctPlaces)
	} else {
		row.EMAFast = Round(s.EMAFast, valuePlaces)
		row.EMASlow = Round(s.EMASlow, valuePlaces)
		row.SMATrend = Round(s.SMATrend, valuePlaces)
		row.RSI = Round(s.RSI, valuePlaces)
		row.MACD = Round(s.MACD, valuePlaces)
		row.MACDSignal = Round(s.MACDSignal, valuePlaces)
		row.MACDHist = Round(s.MACDHist, valuePlaces)
		row.BBUpper = Round(s.BBUpper, valuePlaces)
		row.BBLower = Round(s.BBLower, valuePlaces)
		row.ADL = Round(s.ADL, valuePlaces)
	}
	if res.Frame != nil {
		row.Chart = NewChart(res.Frame)
	}
	return row
}

// NewChart converts every column of f.
func NewChart(f *model.Frame) *Chart {
	c := &Chart{
		Time:    make([]time.Time, f.Len()),
		Columns: make(map[string][]*float64, len(model.Columns)+1),
	}
	closes := make([]*float64, f.Len())
	for i, b := range f.Bars {
		c.Time[i] = b.Time
		closes[i] = Round(b.Close, valuePlaces)
	}
	c.Columns[string(model.ColClose)] = closes
	for _, col := range model.Columns {
		series := f.Series(col)
		if series == nil {
			continue
		}
		vals := make([]*float64, len(series))
		for i, v := range series {
			vals[i] = Round(v, valuePlaces)
		}
		c.Columns[string(col)] = vals
	}
	return c
}
