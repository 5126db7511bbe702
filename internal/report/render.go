package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/pretty"

	"TrendEdge/internal/model"
)

// Messages printed by the command-line surface.
const (
	MsgNoSymbols = "No symbols provided."
	MsgNoSetups  = "No setups found for the given symbols/timeframe."
)

var (
	momentumHeader = []string{
		"Ticker", "Time", "Price", "EMA Fast", "EMA Slow", "SMA Trend", "RSI",
		"MACD", "MACD Signal", "MACD Hist", "BB Upper", "BB Lower", "ADL", "Verdict", "Notes",
	}
	breakoutHeader = []string{
		"symbol", "signal", "time", "close", "sma5", "sma10", "sma20", "bb_upper", "bb_lower",
		"target_sma5", "distance_to_target", "distance_to_target_pct",
	}
)

func isBreakout(r *model.ScanReport) bool {
	return r.Mode == "breakout"
}

// Header returns the column names for the report's mode.
func Header(r *model.ScanReport) []string {
	if isBreakout(r) {
		return breakoutHeader
	}
	return momentumHeader
}

// Records returns the report as string cells matching Header.
func Records(r *model.ScanReport) [][]string {
	records := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		row := NewRow(res)
		ts := formatTime(row.Time, row.Interval)
		if isBreakout(r) {
			records = append(records, []string{
				row.Symbol, row.Verdict, ts, cell(row.Close),
				cell(row.SMAFast), cell(row.SMAMid), cell(row.SMASlow),
				cell(row.BBUpper), cell(row.BBLower),
				cell(row.Target), cell(row.Distance), cell(row.DistancePct),
			})
			continue
		}
		records = append(records, []string{
			row.Symbol, ts, cell(row.Close),
			cell(row.EMAFast), cell(row.EMASlow), cell(row.SMATrend), cell(row.RSI),
			cell(row.MACD), cell(row.MACDSignal), cell(row.MACDHist),
			cell(row.BBUpper), cell(row.BBLower), cell(row.ADL),
			row.Verdict, row.Notes,
		})
	}
	return records
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).String()
}

func formatTime(t time.Time, interval string) string {
	switch interval {
	case model.Interval1d, model.Interval1wk, "":
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// WriteTable prints the report as an aligned text table, or MsgNoSetups when
// it has no results.
func WriteTable(w io.Writer, r *model.ScanReport) error {
	if r.Empty() {
		_, err := fmt.Fprintln(w, MsgNoSetups)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(Header(r), "\t"))
	for _, rec := range Records(r) {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	return tw.Flush()
}

// WriteCSV writes the header and one record per result.
func WriteCSV(w io.Writer, r *model.ScanReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(r)); err != nil {
		return err
	}
	if err := cw.WriteAll(Records(r)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteFailures prints one "[WARN] SYM: reason" line per failure.
func WriteFailures(w io.Writer, failures []model.Failure) {
	for _, f := range failures {
		fmt.Fprintf(w, "[WARN] %s: %s\n", f.Symbol, f.Reason)
	}
}

// Document is the JSON form of a ScanReport.
type Document struct {
	RunID      string          `json:"run_id"`
	Mode       string          `json:"mode"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Results    []Row           `json:"results"`
	Failures   []model.Failure `json:"failures"`
	NoSignal   []string        `json:"no_signal,omitempty"`
}

// NewDocument converts r into its JSON form.
func NewDocument(r *model.ScanReport) Document {
	doc := Document{
		RunID:      r.RunID,
		Mode:       r.Mode,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Results:    Rows(r),
		Failures:   r.Failures,
		NoSignal:   r.NoSignal,
	}
	if doc.Failures == nil {
		doc.Failures = []model.Failure{}
	}
	return doc
}

// WriteJSON writes the report document, indented when indent is set.
func WriteJSON(w io.Writer, r *model.ScanReport, indent bool) error {
	data, err := json.Marshal(NewDocument(r))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if indent {
		data = pretty.Pretty(data)
	} else {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}
